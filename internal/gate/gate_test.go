package gate

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"runright.io/internal/auth"
	"runright.io/internal/cms"
)

func newTestGate(t *testing.T) (*Gate, *cms.Memory) {
	t.Helper()
	t.Setenv("RUNRIGHT_AUTH_SECRET", "gate-test-secret")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)

	store := cms.NewMemory()
	ctx := context.Background()
	if err := store.Companies().Create(ctx, &cms.Company{ID: "c-ok", Name: "OK Retail", Type: "full"}); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	if err := store.Companies().Create(ctx, &cms.Company{ID: "c-blocked", Name: "Blocked Retail", Blocked: true}); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	users := []*cms.User{
		{ID: "u-device", Email: "device@ok.example", Role: cms.RoleDevice, CompanyID: "c-ok", BranchID: "0001"},
		{ID: "u-store", Email: "store@ok.example", Role: cms.RoleStore, CompanyID: "c-ok", BranchID: "0001"},
		{ID: "u-locked", Email: "locked@ok.example", Role: cms.RoleStore, CompanyID: "c-ok", Locked: true},
		{ID: "u-blockedco", Email: "store@blocked.example", Role: cms.RoleStore, CompanyID: "c-blocked"},
	}
	for _, u := range users {
		if err := store.Users().Upsert(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return New(auth.NewResolver(store)), store
}

func tokenFor(t *testing.T, email string, role int) string {
	t.Helper()
	token, err := auth.GenerateToken(auth.Principal{
		UserID: "u", Email: email, Role: role, CompanyID: "c-ok",
	}, auth.TokenTTL)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func invoke(ctx context.Context, g *Gate, method string) (any, error) {
	interceptor := g.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: method}
	return interceptor(ctx, struct{}{}, info, func(ctx context.Context, req any) (any, error) {
		if p, ok := auth.PrincipalFromContext(ctx); ok {
			return p, nil
		}
		return nil, nil
	})
}

func mdContext(pairs ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(pairs...))
}

const protectedMethod = "/runright.v1.Users/GetUsers"

func wantStatus(t *testing.T, err error, code codes.Code, detail string) {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("not a status error: %v", err)
	}
	if st.Code() != code {
		t.Fatalf("code = %v, want %v (detail %q)", st.Code(), code, st.Message())
	}
	if st.Message() != detail {
		t.Fatalf("detail = %q, want %q", st.Message(), detail)
	}
}

func TestGateMissingHeader(t *testing.T) {
	g, _ := newTestGate(t)
	_, err := invoke(context.Background(), g, protectedMethod)
	wantStatus(t, err, codes.Unauthenticated, "No authorization header provided")
}

func TestGateMalformedHeader(t *testing.T) {
	g, _ := newTestGate(t)
	for _, header := range []string{"Bearer", "Bearer ", "token-with-no-scheme"} {
		_, err := invoke(mdContext("authorization", header), g, protectedMethod)
		wantStatus(t, err, codes.Unauthenticated, "Authorization header is malformed")
	}
}

func TestGateInvalidToken(t *testing.T) {
	g, _ := newTestGate(t)
	_, err := invoke(mdContext("authorization", "Bearer not-a-jwt"), g, protectedMethod)
	wantStatus(t, err, codes.Unauthenticated, "Authorization token is invalid/expired. Please reauthenticate")
}

func TestGateUnknownUser(t *testing.T) {
	g, _ := newTestGate(t)
	token := tokenFor(t, "ghost@ok.example", cms.RoleStore)
	_, err := invoke(mdContext("authorization", "Bearer "+token), g, protectedMethod)
	wantStatus(t, err, codes.Unauthenticated, "Authorization token is invalid/expired. Please reauthenticate")
}

func TestGateLockedAccount(t *testing.T) {
	g, _ := newTestGate(t)
	token := tokenFor(t, "locked@ok.example", cms.RoleStore)
	_, err := invoke(mdContext("authorization", "Bearer "+token), g, protectedMethod)
	wantStatus(t, err, codes.PermissionDenied, "This account has been locked")
}

func TestGateBlockedTenant(t *testing.T) {
	g, _ := newTestGate(t)
	token := tokenFor(t, "store@blocked.example", cms.RoleStore)
	_, err := invoke(mdContext("authorization", "Bearer "+token), g, protectedMethod)
	wantStatus(t, err, codes.Unauthenticated, "This account is blocked. Please contact your RUNRIGHT representative")
}

func TestGateWebFloor(t *testing.T) {
	g, _ := newTestGate(t)

	deviceToken := tokenFor(t, "device@ok.example", cms.RoleDevice)
	_, err := invoke(mdContext(
		"authorization", "Bearer "+deviceToken,
		"x-grpc-web", "1",
	), g, protectedMethod)
	wantStatus(t, err, codes.Unauthenticated, "Access method not permitted")

	// The marker's value is irrelevant; only presence matters.
	_, err = invoke(mdContext(
		"authorization", "Bearer "+deviceToken,
		"x-grpc-web", "",
	), g, protectedMethod)
	wantStatus(t, err, codes.Unauthenticated, "Access method not permitted")

	// The same device over the native transport passes.
	if _, err := invoke(mdContext("authorization", "Bearer "+deviceToken), g, protectedMethod); err != nil {
		t.Fatalf("native transport rejected: %v", err)
	}

	// A store account passes the floor over the web transport.
	storeToken := tokenFor(t, "store@ok.example", cms.RoleStore)
	if _, err := invoke(mdContext(
		"authorization", "Bearer "+storeToken,
		"x-grpc-web", "1",
	), g, protectedMethod); err != nil {
		t.Fatalf("store web call rejected: %v", err)
	}
}

func TestGateAttachesPrincipal(t *testing.T) {
	g, _ := newTestGate(t)
	token := tokenFor(t, "store@ok.example", cms.RoleStore)
	resp, err := invoke(mdContext("authorization", "Bearer "+token), g, protectedMethod)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	p, ok := resp.(auth.Principal)
	if !ok {
		t.Fatalf("handler did not observe a principal: %T", resp)
	}
	if p.Email != "store@ok.example" || p.CompanyID != "c-ok" || p.Type != "full" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestGateExemptAndBypassMethods(t *testing.T) {
	g, _ := newTestGate(t)
	for _, method := range []string{
		"/runright.v1.Users/Login",
		"/runright.v1.Users/SendPasswordReset",
		"/runright.v1.Users/ResetPassword",
		"/runright.v1.Reports/GetData",
	} {
		if _, err := invoke(context.Background(), g, method); err != nil {
			t.Fatalf("%s should not require a token: %v", method, err)
		}
	}
}

func TestRequireAndAuthorize(t *testing.T) {
	p := auth.Principal{Role: cms.RoleManager}
	if err := Authorize(p, cms.RoleManager, cms.RoleAdmin); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	err := Authorize(p, cms.RoleAdmin)
	wantStatus(t, err, codes.PermissionDenied, "You do not have permission to perform this action")

	// Privilege is membership, not ordering: a manager is not a
	// technician.
	err = Authorize(p, cms.RoleTechnician)
	wantStatus(t, err, codes.PermissionDenied, "You do not have permission to perform this action")

	_, err = Require(context.Background(), cms.RoleManager)
	wantStatus(t, err, codes.Unauthenticated, "Authentication required")

	ctx := auth.ContextWithPrincipal(context.Background(), p)
	got, err := Require(ctx, cms.RoleManager)
	if err != nil || got.Role != cms.RoleManager {
		t.Fatalf("Require: %+v, %v", got, err)
	}
}

func TestGuard(t *testing.T) {
	called := false
	fn := Guard(func(ctx context.Context, req string) (string, error) {
		called = true
		return req + "-ok", nil
	}, cms.RoleAdmin)

	ctx := auth.ContextWithPrincipal(context.Background(), auth.Principal{Role: cms.RoleStore})
	if _, err := fn(ctx, "x"); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
	if called {
		t.Fatal("guarded body ran on mismatch")
	}

	ctx = auth.ContextWithPrincipal(context.Background(), auth.Principal{Role: cms.RoleAdmin})
	out, err := fn(ctx, "x")
	if err != nil || out != "x-ok" {
		t.Fatalf("guarded call failed: %q, %v", out, err)
	}
}
