package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"runright.io/internal/auth"
	"runright.io/internal/cms"
	"runright.io/internal/gate"
	"runright.io/internal/mail"
	"runright.io/internal/query"
)

func startServer(t *testing.T) (*grpc.ClientConn, *cms.Memory) {
	t.Helper()
	t.Setenv("RUNRIGHT_AUTH_SECRET", "rpc-test-secret")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)

	store := cms.NewMemory()
	seedTestData(t, store)

	g := gate.New(auth.NewResolver(store))
	server := grpc.NewServer(
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(
			gate.RecoveryInterceptor(),
			g.UnaryInterceptor(),
		),
	)
	RegisterUsersServer(server, NewUsersService(store, mail.LogMailer{}))
	RegisterCompaniesServer(server, NewCompaniesService(store))
	RegisterCustomersServer(server, NewCustomersService(store))
	RegisterShoesServer(server, NewShoesService(store))
	RegisterDataServer(server, NewDataService(store))
	RegisterReportsServer(server, NewReportsService(store))

	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, store
}

func seedTestData(t *testing.T, store *cms.Memory) {
	t.Helper()
	ctx := context.Background()
	companies := []*cms.Company{
		{ID: "c-ten", Name: "Tenant Ten", Type: "full", LicenceExpiry: 2000000000000},
		{ID: "c-twenty", Name: "Tenant Twenty", Type: "trial"},
	}
	for _, c := range companies {
		if err := store.Companies().Create(ctx, c); err != nil {
			t.Fatalf("seed company: %v", err)
		}
	}

	branches := []*cms.Branch{
		{CompanyID: "c-ten", BranchID: "0001", Name: "Main"},
		{CompanyID: "c-ten", BranchID: "0002", Name: "East"},
	}
	for _, b := range branches {
		if err := store.Branches().Create(ctx, b); err != nil {
			t.Fatalf("seed branch: %v", err)
		}
		if _, err := store.Counters().Next(ctx, "branch"); err != nil {
			t.Fatalf("seed counter: %v", err)
		}
	}

	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users := []*cms.User{
		{ID: "u-admin", Email: "admin@hq.example", Name: "Admin", Role: cms.RoleAdmin, PasswordHash: hash},
		{ID: "u-manager", Email: "manager@ten.example", Name: "Manager", Role: cms.RoleManager, CompanyID: "c-ten", BranchID: "0001", PasswordHash: hash},
		{ID: "u-tech", Email: "tech@ten.example", Name: "Tech", Role: cms.RoleTechnician, CompanyID: "c-ten", BranchID: "0001", PasswordHash: hash},
		{ID: "u-other", Email: "manager@twenty.example", Name: "Other", Role: cms.RoleManager, CompanyID: "c-twenty", PasswordHash: hash},
	}
	for _, u := range users {
		if err := store.Users().Upsert(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	customers := []*cms.Customer{
		{ID: "cust-1", CompanyID: "c-ten", BranchID: "0001", FirstName: "Ada", LastName: "Runner"},
		{ID: "cust-2", CompanyID: "c-ten", BranchID: "0002", FirstName: "Bo", LastName: "Walker"},
		{ID: "cust-3", CompanyID: "c-twenty", FirstName: "Cy", LastName: "Jogger"},
	}
	for _, c := range customers {
		if err := store.Customers().Upsert(ctx, c); err != nil {
			t.Fatalf("seed customer: %v", err)
		}
	}
}

func login(t *testing.T, conn *grpc.ClientConn, email, password string) *Session {
	t.Helper()
	var session Session
	err := conn.Invoke(context.Background(), "/runright.v1.Users/Login",
		&LoginRequest{Email: email, Password: password}, &session)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return &session
}

func authCtx(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func wantStatus(t *testing.T, err error, code codes.Code, detail string) {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("not a status error: %v", err)
	}
	if st.Code() != code || st.Message() != detail {
		t.Fatalf("got %v %q, want %v %q", st.Code(), st.Message(), code, detail)
	}
}

func TestLogin(t *testing.T) {
	conn, _ := startServer(t)

	session := login(t, conn, "manager@ten.example", "correct horse")
	if session.Token == "" {
		t.Fatal("expected a token")
	}
	if session.Type != "full" || session.CompanyID != "c-ten" {
		t.Fatalf("unexpected session: %+v", session)
	}

	claims, err := auth.ParseAndValidate(session.Token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 7*time.Hour+59*time.Minute || ttl > 8*time.Hour {
		t.Fatalf("expected 8h token, got %v", ttl)
	}
}

func TestLoginFailures(t *testing.T) {
	conn, store := startServer(t)
	const detail = "The username/password is incorrect"

	var session Session
	err := conn.Invoke(context.Background(), "/runright.v1.Users/Login",
		&LoginRequest{Email: "manager@ten.example", Password: "wrong"}, &session)
	wantStatus(t, err, codes.PermissionDenied, detail)

	err = conn.Invoke(context.Background(), "/runright.v1.Users/Login",
		&LoginRequest{Email: "ghost@ten.example", Password: "correct horse"}, &session)
	wantStatus(t, err, codes.PermissionDenied, detail)

	// Disabled accounts fail with the same message as bad credentials.
	ctx := context.Background()
	u, err := store.Users().FindOne(ctx, (&cms.Filter{}).Where("user_id", "u-tech"))
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	u.Disabled = true
	if err := store.Users().Upsert(ctx, u); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	err = conn.Invoke(context.Background(), "/runright.v1.Users/Login",
		&LoginRequest{Email: "tech@ten.example", Password: "correct horse"}, &session)
	wantStatus(t, err, codes.PermissionDenied, detail)
}

func TestLoginWebFloor(t *testing.T) {
	conn, _ := startServer(t)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-grpc-web", "1")
	var session Session
	err := conn.Invoke(ctx, "/runright.v1.Users/Login",
		&LoginRequest{Email: "tech@ten.example", Password: "correct horse"}, &session)
	wantStatus(t, err, codes.PermissionDenied, "The username/password is incorrect")

	// The same credentials over the native transport succeed.
	login(t, conn, "tech@ten.example", "correct horse")
}

func TestUnauthenticatedCall(t *testing.T) {
	conn, _ := startServer(t)

	var out UserList
	err := conn.Invoke(context.Background(), "/runright.v1.Users/GetUsers", &query.Descriptor{}, &out)
	wantStatus(t, err, codes.Unauthenticated, "No authorization header provided")
}

func TestGetDataBypassesGate(t *testing.T) {
	conn, _ := startServer(t)

	var out DataResponse
	if err := conn.Invoke(context.Background(), "/runright.v1.Reports/GetData", &GetDataRequest{}, &out); err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if out.Status != "ok" || out.Service != "runright-api" {
		t.Fatalf("unexpected probe response: %+v", out)
	}
}

func TestRoleGating(t *testing.T) {
	conn, _ := startServer(t)
	manager := login(t, conn, "manager@ten.example", "correct horse")

	// AddCompany is admin-only.
	var res Result
	err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Companies/AddCompany",
		&cms.Company{Name: "New Retail"}, &res)
	wantStatus(t, err, codes.PermissionDenied, "You do not have permission to perform this action")

	admin := login(t, conn, "admin@hq.example", "correct horse")
	if err := conn.Invoke(authCtx(admin.Token), "/runright.v1.Companies/AddCompany",
		&cms.Company{Name: "New Retail"}, &res); err != nil {
		t.Fatalf("AddCompany as admin: %v", err)
	}
	if res.StringResult == "" {
		t.Fatal("expected the new company id")
	}

	// A second company with the same name conflicts.
	err = conn.Invoke(authCtx(admin.Token), "/runright.v1.Companies/AddCompany",
		&cms.Company{Name: "New Retail"}, &res)
	wantStatus(t, err, codes.AlreadyExists, "A company already exists by this name")
}

func TestEditCompanyCrossTenant(t *testing.T) {
	conn, _ := startServer(t)
	manager := login(t, conn, "manager@ten.example", "correct horse")

	var res Result
	err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Companies/EditCompany",
		&cms.Company{ID: "c-twenty", Name: "Hijacked"}, &res)
	wantStatus(t, err, codes.PermissionDenied, "You do not have permission to edit this company")

	if err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Companies/EditCompany",
		&cms.Company{ID: "c-ten", Name: "Tenant Ten Renamed"}, &res); err != nil {
		t.Fatalf("EditCompany own tenant: %v", err)
	}
}

func TestCustomerScoping(t *testing.T) {
	conn, _ := startServer(t)

	// The technician is pinned to branch 0001 and sees one customer.
	tech := login(t, conn, "tech@ten.example", "correct horse")
	var res Result
	if err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Customers/CountCustomers",
		&query.Descriptor{}, &res); err != nil {
		t.Fatalf("CountCustomers as technician: %v", err)
	}
	if res.IntResult != 1 {
		t.Fatalf("technician sees %d customers, want 1", res.IntResult)
	}

	// The manager sees the whole company.
	manager := login(t, conn, "manager@ten.example", "correct horse")
	if err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Customers/CountCustomers",
		&query.Descriptor{}, &res); err != nil {
		t.Fatalf("CountCustomers as manager: %v", err)
	}
	if res.IntResult != 2 {
		t.Fatalf("manager sees %d customers, want 2", res.IntResult)
	}

	// The admin sees everything.
	admin := login(t, conn, "admin@hq.example", "correct horse")
	if err := conn.Invoke(authCtx(admin.Token), "/runright.v1.Customers/CountCustomers",
		&query.Descriptor{}, &res); err != nil {
		t.Fatalf("CountCustomers as admin: %v", err)
	}
	if res.IntResult != 3 {
		t.Fatalf("admin sees %d customers, want 3", res.IntResult)
	}
}

func TestSetUserRoleCeiling(t *testing.T) {
	conn, _ := startServer(t)
	manager := login(t, conn, "manager@ten.example", "correct horse")

	var res Result
	err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Users/SetUser",
		&SetUserRequest{Email: "newadmin@ten.example", Role: cms.RoleAdmin, Password: "pw"}, &res)
	wantStatus(t, err, codes.PermissionDenied, "You do not have the ability to give this role")
}

func TestSetUserManagerPinning(t *testing.T) {
	conn, store := startServer(t)
	manager := login(t, conn, "manager@ten.example", "correct horse")

	var res Result
	if err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Users/SetUser",
		&SetUserRequest{
			Email:     "newtech@ten.example",
			Name:      "New Tech",
			Role:      cms.RoleTechnician,
			CompanyID: "c-twenty",
			BranchID:  "0099",
			Password:  "pw123456",
		}, &res); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	created, err := store.Users().FindOne(context.Background(),
		(&cms.Filter{}).Where("user_id", res.StringResult))
	if err != nil {
		t.Fatalf("FindOne created: %v", err)
	}
	// Company and branch come from the manager, not the payload.
	if created.CompanyID != "c-ten" || created.BranchID != "0001" {
		t.Fatalf("manager pinning failed: %+v", created)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	conn, store := startServer(t)

	var res Result
	if err := conn.Invoke(context.Background(), "/runright.v1.Users/SendPasswordReset",
		&query.Descriptor{StringQuery: "tech@ten.example"}, &res); err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}

	// The reply is identical for unknown addresses.
	if err := conn.Invoke(context.Background(), "/runright.v1.Users/SendPasswordReset",
		&query.Descriptor{StringQuery: "ghost@ten.example"}, &res); err != nil {
		t.Fatalf("SendPasswordReset unknown: %v", err)
	}

	ctx := context.Background()
	u, err := store.Users().FindOne(ctx, (&cms.Filter{}).Where("user_id", "u-tech"))
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if u.ResetToken == "" {
		t.Fatal("expected a reset token on the record")
	}

	if err := conn.Invoke(context.Background(), "/runright.v1.Users/ResetPassword",
		&ResetPasswordRequest{Token: u.ResetToken, Password: "brand new pw"}, &res); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	login(t, conn, "tech@ten.example", "brand new pw")

	// The link is single use.
	err = conn.Invoke(context.Background(), "/runright.v1.Users/ResetPassword",
		&ResetPasswordRequest{Token: u.ResetToken, Password: "again"}, &res)
	wantStatus(t, err, codes.NotFound, "Invalid password reset link")
}

func TestPasswordResetExpiredLink(t *testing.T) {
	conn, store := startServer(t)
	ctx := context.Background()

	if _, err := store.Users().SetResetToken(ctx, "tech@ten.example", "stale-token", cms.NowMillis()-4*60*60*1000); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	var res Result
	err := conn.Invoke(context.Background(), "/runright.v1.Users/ResetPassword",
		&ResetPasswordRequest{Token: "stale-token", Password: "pw"}, &res)
	wantStatus(t, err, codes.NotFound, "Password reset link has expired")
}

func TestAddBranchAllocatesSequence(t *testing.T) {
	conn, _ := startServer(t)
	admin := login(t, conn, "admin@hq.example", "correct horse")

	var first, second Result
	if err := conn.Invoke(authCtx(admin.Token), "/runright.v1.Companies/AddBranch",
		&AddBranchRequest{CompanyID: "c-ten", Name: "North"}, &first); err != nil {
		t.Fatalf("AddBranch: %v", err)
	}
	if err := conn.Invoke(authCtx(admin.Token), "/runright.v1.Companies/AddBranch",
		&AddBranchRequest{CompanyID: "c-twenty", Name: "South"}, &second); err != nil {
		t.Fatalf("AddBranch: %v", err)
	}
	// Two branches already exist, so the sequence continues from there.
	if first.StringResult != "0003" || second.StringResult != "0004" {
		t.Fatalf("branch ids %q, %q; want 0003, 0004", first.StringResult, second.StringResult)
	}
}

func TestGetBranchUsersRequiresBranchID(t *testing.T) {
	conn, _ := startServer(t)
	manager := login(t, conn, "manager@ten.example", "correct horse")

	var out UserList
	err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Users/GetBranchUsers",
		&query.Descriptor{}, &out)
	wantStatus(t, err, codes.InvalidArgument, "branch_id is required")

	if err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Users/GetBranchUsers",
		&query.Descriptor{StringQuery: "0001"}, &out); err != nil {
		t.Fatalf("GetBranchUsers: %v", err)
	}
	if len(out.Users) != 2 {
		t.Fatalf("expected 2 branch users, got %d", len(out.Users))
	}
}

func TestGetUsersNoResults(t *testing.T) {
	conn, _ := startServer(t)
	manager := login(t, conn, "manager@ten.example", "correct horse")

	var out UserList
	err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Users/GetUsers",
		&query.Descriptor{FilterOn: "name", StringQuery: "nobody-here"}, &out)
	wantStatus(t, err, codes.NotFound, "No results found for this query")
}

func TestSaleRecordsLimitClamp(t *testing.T) {
	conn, store := startServer(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		trial := &cms.ShoeTrial{
			ID: string(rune('A' + i)), CustomerID: "cust-1", CompanyID: "c-ten",
			BranchID: "0001", Sold: true, RecordingDate: int64(i + 1),
		}
		if err := store.Trials().Insert(ctx, trial); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	manager := login(t, conn, "manager@ten.example", "correct horse")

	var out TrialList
	// No limit falls back to the default page of 10.
	if err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Reports/GetSaleRecords",
		&SaleRecordsRequest{}, &out); err != nil {
		t.Fatalf("GetSaleRecords: %v", err)
	}
	if len(out.Trials) != 10 {
		t.Fatalf("default page = %d, want 10", len(out.Trials))
	}

	// Oversized limits also fall back to the default.
	if err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Reports/GetSaleRecords",
		&SaleRecordsRequest{Query: query.Descriptor{Limit: 200}}, &out); err != nil {
		t.Fatalf("GetSaleRecords: %v", err)
	}
	if len(out.Trials) != 10 {
		t.Fatalf("oversized page = %d, want 10", len(out.Trials))
	}

	// A valid limit is honoured.
	if err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Reports/GetSaleRecords",
		&SaleRecordsRequest{Query: query.Descriptor{Limit: 20}}, &out); err != nil {
		t.Fatalf("GetSaleRecords: %v", err)
	}
	if len(out.Trials) != 20 {
		t.Fatalf("valid page = %d, want 20", len(out.Trials))
	}
}

func seedShoes(t *testing.T, store *cms.Memory) {
	t.Helper()
	ctx := context.Background()
	shoes := []*cms.Shoe{
		{ID: "shoe-1", EAN: "4001", Brand: "Nike", Model: "Pegasus", Season: "SS26"},
		{ID: "shoe-2", EAN: "4002", Brand: "Nike", Model: "Vomero", Season: "SS26"},
		{ID: "shoe-3", EAN: "4003", Brand: "Asics", Model: "Kayano", Season: "AW25"},
	}
	for _, sh := range shoes {
		if err := store.Shoes().Upsert(ctx, sh); err != nil {
			t.Fatalf("seed shoe: %v", err)
		}
	}
}

func TestGetShoeByEan(t *testing.T) {
	conn, store := startServer(t)
	seedShoes(t, store)
	tech := login(t, conn, "tech@ten.example", "correct horse")

	var shoe cms.Shoe
	if err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Shoes/GetShoe",
		&query.Descriptor{StringQuery: "4002"}, &shoe); err != nil {
		t.Fatalf("GetShoe: %v", err)
	}
	if shoe.Model != "Vomero" {
		t.Fatalf("unexpected shoe: %+v", shoe)
	}

	err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Shoes/GetShoe",
		&query.Descriptor{}, &shoe)
	wantStatus(t, err, codes.InvalidArgument, "Please specify EAN in string_query")

	err = conn.Invoke(authCtx(tech.Token), "/runright.v1.Shoes/GetShoe",
		&query.Descriptor{StringQuery: "9999"}, &shoe)
	wantStatus(t, err, codes.NotFound, "No shoe found matching specified EAN")
}

func TestEanExists(t *testing.T) {
	conn, store := startServer(t)
	seedShoes(t, store)
	tech := login(t, conn, "tech@ten.example", "correct horse")

	var res Result
	if err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Shoes/EanExists",
		&query.Descriptor{StringQuery: "4001"}, &res); err != nil {
		t.Fatalf("EanExists: %v", err)
	}
	if res.IntResult != 1 {
		t.Fatalf("EanExists = %d, want 1", res.IntResult)
	}

	if err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Shoes/EanExists",
		&query.Descriptor{StringQuery: "9999"}, &res); err != nil {
		t.Fatalf("EanExists unknown: %v", err)
	}
	if res.IntResult != 0 {
		t.Fatalf("EanExists unknown = %d, want 0", res.IntResult)
	}

	err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Shoes/EanExists",
		&query.Descriptor{}, &res)
	wantStatus(t, err, codes.InvalidArgument, "Please specify EAN in string_query")
}

func TestGetShoesNoResults(t *testing.T) {
	conn, store := startServer(t)
	seedShoes(t, store)
	tech := login(t, conn, "tech@ten.example", "correct horse")

	var out ShoeList
	err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Shoes/GetShoes",
		&query.Descriptor{FilterOn: "brand", StringQuery: "NoSuchBrand"}, &out)
	wantStatus(t, err, codes.NotFound, "No results found for this query")
}

func TestGetShoesMultiFieldSort(t *testing.T) {
	conn, store := startServer(t)
	seedShoes(t, store)
	tech := login(t, conn, "tech@ten.example", "correct horse")

	var out ShoeList
	if err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Shoes/GetShoes",
		&query.Descriptor{
			FilterOn:    "brand,season",
			StringQuery: "nike,SS26",
			SortBy:      "model",
			SortOrder:   1,
		}, &out); err != nil {
		t.Fatalf("GetShoes: %v", err)
	}
	if len(out.Shoes) != 2 {
		t.Fatalf("expected 2 shoes, got %d", len(out.Shoes))
	}
	// Sort is honoured in the comma-separated form too.
	if out.Shoes[0].Model != "Vomero" || out.Shoes[1].Model != "Pegasus" {
		t.Fatalf("sort not applied: %+v", out.Shoes)
	}
}

func TestLicenceHistory(t *testing.T) {
	conn, _ := startServer(t)
	admin := login(t, conn, "admin@hq.example", "correct horse")

	var res Result
	if err := conn.Invoke(authCtx(admin.Token), "/runright.v1.Companies/SetLicence",
		&SetLicenceRequest{CompanyID: "c-ten", Type: "full", LicenceExpiry: 2100000000000, MonthCount: 12}, &res); err != nil {
		t.Fatalf("SetLicence: %v", err)
	}

	var out LicenceEventList
	if err := conn.Invoke(authCtx(admin.Token), "/runright.v1.Companies/GetLicenceHistory",
		&query.Descriptor{StringQuery: "c-ten"}, &out); err != nil {
		t.Fatalf("GetLicenceHistory: %v", err)
	}
	if len(out.Events) != 1 || out.Events[0].Type != "full" || out.Events[0].MonthCount != 12 {
		t.Fatalf("unexpected history: %+v", out.Events)
	}

	manager := login(t, conn, "manager@ten.example", "correct horse")
	err := conn.Invoke(authCtx(manager.Token), "/runright.v1.Companies/GetLicenceHistory",
		&query.Descriptor{StringQuery: "c-ten"}, &out)
	wantStatus(t, err, codes.PermissionDenied, "You do not have permission to perform this action")
}

func TestRemoveTrial(t *testing.T) {
	conn, store := startServer(t)
	tech := login(t, conn, "tech@ten.example", "correct horse")

	var created Result
	if err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Data/SetTrial",
		&cms.ShoeTrial{CustomerID: "cust-1", ShoeName: "Pegasus"}, &created); err != nil {
		t.Fatalf("SetTrial: %v", err)
	}

	var res Result
	err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Data/RemoveTrial",
		&RemoveTrialRequest{}, &res)
	wantStatus(t, err, codes.InvalidArgument, "recording_id is required")

	err = conn.Invoke(authCtx(tech.Token), "/runright.v1.Data/RemoveTrial",
		&RemoveTrialRequest{TrialID: "not-a-recording"}, &res)
	wantStatus(t, err, codes.InvalidArgument, "Invalid recording_id")

	// A caller from another tenant cannot reach the recording.
	other := login(t, conn, "manager@twenty.example", "correct horse")
	if err := conn.Invoke(authCtx(other.Token), "/runright.v1.Data/RemoveTrial",
		&RemoveTrialRequest{TrialID: created.StringResult}, &res); err != nil {
		t.Fatalf("RemoveTrial cross tenant: %v", err)
	}
	if res.IntResult != 0 {
		t.Fatalf("cross-tenant delete removed %d recordings", res.IntResult)
	}

	if err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Data/RemoveTrial",
		&RemoveTrialRequest{TrialID: created.StringResult}, &res); err != nil {
		t.Fatalf("RemoveTrial: %v", err)
	}
	if res.IntResult != 1 {
		t.Fatalf("delete removed %d recordings, want 1", res.IntResult)
	}
	trials, err := store.Trials().List(context.Background(), (&cms.Filter{}).Where("trial_id", created.StringResult))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(trials) != 0 {
		t.Fatal("recording still present after delete")
	}
}

func TestTrialRecordingPinsTenant(t *testing.T) {
	conn, store := startServer(t)
	tech := login(t, conn, "tech@ten.example", "correct horse")

	var res Result
	if err := conn.Invoke(authCtx(tech.Token), "/runright.v1.Data/SetTrial",
		&cms.ShoeTrial{CustomerID: "cust-1", CompanyID: "c-twenty", BranchID: "0099", ShoeName: "Pegasus"}, &res); err != nil {
		t.Fatalf("SetTrial: %v", err)
	}
	trials, err := store.Trials().List(context.Background(), (&cms.Filter{}).Where("trial_id", res.StringResult))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(trials) != 1 || trials[0].CompanyID != "c-ten" || trials[0].BranchID != "0001" {
		t.Fatalf("trial not pinned to caller tenant: %+v", trials)
	}
}
