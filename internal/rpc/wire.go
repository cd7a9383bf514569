package rpc

import (
	"context"

	"google.golang.org/grpc"

	"runright.io/internal/cms"
	"runright.io/internal/query"
)

// unaryHandler adapts a typed service method into the handler shape a
// grpc.MethodDesc expects, threading the chained interceptors through.
func unaryHandler[S any, Req any, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// UsersServer handles accounts, sessions and password recovery.
type UsersServer interface {
	Login(context.Context, *LoginRequest) (*Session, error)
	SendPasswordReset(context.Context, *query.Descriptor) (*Result, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Result, error)
	SetUser(context.Context, *SetUserRequest) (*Result, error)
	GetUsers(context.Context, *query.Descriptor) (*UserList, error)
	CountUsers(context.Context, *query.Descriptor) (*Result, error)
	GetBranchUsers(context.Context, *query.Descriptor) (*UserList, error)
	RemoveUser(context.Context, *RemoveUserRequest) (*Result, error)
}

func RegisterUsersServer(s grpc.ServiceRegistrar, srv UsersServer) {
	s.RegisterService(&usersServiceDesc, srv)
}

var usersServiceDesc = grpc.ServiceDesc{
	ServiceName: "runright.v1.Users",
	HandlerType: (*UsersServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler("/runright.v1.Users/Login", UsersServer.Login)},
		{MethodName: "SendPasswordReset", Handler: unaryHandler("/runright.v1.Users/SendPasswordReset", UsersServer.SendPasswordReset)},
		{MethodName: "ResetPassword", Handler: unaryHandler("/runright.v1.Users/ResetPassword", UsersServer.ResetPassword)},
		{MethodName: "SetUser", Handler: unaryHandler("/runright.v1.Users/SetUser", UsersServer.SetUser)},
		{MethodName: "GetUsers", Handler: unaryHandler("/runright.v1.Users/GetUsers", UsersServer.GetUsers)},
		{MethodName: "CountUsers", Handler: unaryHandler("/runright.v1.Users/CountUsers", UsersServer.CountUsers)},
		{MethodName: "GetBranchUsers", Handler: unaryHandler("/runright.v1.Users/GetBranchUsers", UsersServer.GetBranchUsers)},
		{MethodName: "RemoveUser", Handler: unaryHandler("/runright.v1.Users/RemoveUser", UsersServer.RemoveUser)},
	},
	Streams: []grpc.StreamDesc{},
}

// CompaniesServer handles tenants, branches and licences.
type CompaniesServer interface {
	AddCompany(context.Context, *cms.Company) (*Result, error)
	EditCompany(context.Context, *cms.Company) (*Result, error)
	RemoveCompany(context.Context, *RemoveCompanyRequest) (*Result, error)
	GetCompany(context.Context, *query.Descriptor) (*cms.Company, error)
	GetCompanies(context.Context, *query.Descriptor) (*CompanyList, error)
	CountCompanies(context.Context, *query.Descriptor) (*Result, error)
	AddBranch(context.Context, *AddBranchRequest) (*Result, error)
	EditBranch(context.Context, *cms.Branch) (*Result, error)
	GetBranch(context.Context, *query.Descriptor) (*cms.Branch, error)
	SetLicence(context.Context, *SetLicenceRequest) (*Result, error)
	GetLicenceHistory(context.Context, *query.Descriptor) (*LicenceEventList, error)
}

func RegisterCompaniesServer(s grpc.ServiceRegistrar, srv CompaniesServer) {
	s.RegisterService(&companiesServiceDesc, srv)
}

var companiesServiceDesc = grpc.ServiceDesc{
	ServiceName: "runright.v1.Companies",
	HandlerType: (*CompaniesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddCompany", Handler: unaryHandler("/runright.v1.Companies/AddCompany", CompaniesServer.AddCompany)},
		{MethodName: "EditCompany", Handler: unaryHandler("/runright.v1.Companies/EditCompany", CompaniesServer.EditCompany)},
		{MethodName: "RemoveCompany", Handler: unaryHandler("/runright.v1.Companies/RemoveCompany", CompaniesServer.RemoveCompany)},
		{MethodName: "GetCompany", Handler: unaryHandler("/runright.v1.Companies/GetCompany", CompaniesServer.GetCompany)},
		{MethodName: "GetCompanies", Handler: unaryHandler("/runright.v1.Companies/GetCompanies", CompaniesServer.GetCompanies)},
		{MethodName: "CountCompanies", Handler: unaryHandler("/runright.v1.Companies/CountCompanies", CompaniesServer.CountCompanies)},
		{MethodName: "AddBranch", Handler: unaryHandler("/runright.v1.Companies/AddBranch", CompaniesServer.AddBranch)},
		{MethodName: "EditBranch", Handler: unaryHandler("/runright.v1.Companies/EditBranch", CompaniesServer.EditBranch)},
		{MethodName: "GetBranch", Handler: unaryHandler("/runright.v1.Companies/GetBranch", CompaniesServer.GetBranch)},
		{MethodName: "SetLicence", Handler: unaryHandler("/runright.v1.Companies/SetLicence", CompaniesServer.SetLicence)},
		{MethodName: "GetLicenceHistory", Handler: unaryHandler("/runright.v1.Companies/GetLicenceHistory", CompaniesServer.GetLicenceHistory)},
	},
	Streams: []grpc.StreamDesc{},
}

// CustomersServer handles end-customer records.
type CustomersServer interface {
	SetCustomer(context.Context, *cms.Customer) (*Result, error)
	GetCustomers(context.Context, *query.Descriptor) (*CustomerList, error)
	CountCustomers(context.Context, *query.Descriptor) (*Result, error)
	RemoveCustomer(context.Context, *RemoveCustomerRequest) (*Result, error)
}

func RegisterCustomersServer(s grpc.ServiceRegistrar, srv CustomersServer) {
	s.RegisterService(&customersServiceDesc, srv)
}

var customersServiceDesc = grpc.ServiceDesc{
	ServiceName: "runright.v1.Customers",
	HandlerType: (*CustomersServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetCustomer", Handler: unaryHandler("/runright.v1.Customers/SetCustomer", CustomersServer.SetCustomer)},
		{MethodName: "GetCustomers", Handler: unaryHandler("/runright.v1.Customers/GetCustomers", CustomersServer.GetCustomers)},
		{MethodName: "CountCustomers", Handler: unaryHandler("/runright.v1.Customers/CountCustomers", CustomersServer.CountCustomers)},
		{MethodName: "RemoveCustomer", Handler: unaryHandler("/runright.v1.Customers/RemoveCustomer", CustomersServer.RemoveCustomer)},
	},
	Streams: []grpc.StreamDesc{},
}

// ShoesServer handles the shared shoe catalogue.
type ShoesServer interface {
	SetShoe(context.Context, *cms.Shoe) (*Result, error)
	GetShoe(context.Context, *query.Descriptor) (*cms.Shoe, error)
	GetShoes(context.Context, *query.Descriptor) (*ShoeList, error)
	CountShoes(context.Context, *query.Descriptor) (*Result, error)
	EanExists(context.Context, *query.Descriptor) (*Result, error)
	RemoveShoe(context.Context, *RemoveShoeRequest) (*Result, error)
}

func RegisterShoesServer(s grpc.ServiceRegistrar, srv ShoesServer) {
	s.RegisterService(&shoesServiceDesc, srv)
}

var shoesServiceDesc = grpc.ServiceDesc{
	ServiceName: "runright.v1.Shoes",
	HandlerType: (*ShoesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetShoe", Handler: unaryHandler("/runright.v1.Shoes/SetShoe", ShoesServer.SetShoe)},
		{MethodName: "GetShoe", Handler: unaryHandler("/runright.v1.Shoes/GetShoe", ShoesServer.GetShoe)},
		{MethodName: "GetShoes", Handler: unaryHandler("/runright.v1.Shoes/GetShoes", ShoesServer.GetShoes)},
		{MethodName: "CountShoes", Handler: unaryHandler("/runright.v1.Shoes/CountShoes", ShoesServer.CountShoes)},
		{MethodName: "EanExists", Handler: unaryHandler("/runright.v1.Shoes/EanExists", ShoesServer.EanExists)},
		{MethodName: "RemoveShoe", Handler: unaryHandler("/runright.v1.Shoes/RemoveShoe", ShoesServer.RemoveShoe)},
	},
	Streams: []grpc.StreamDesc{},
}

// DataServer handles shoe trial recordings.
type DataServer interface {
	SetTrial(context.Context, *cms.ShoeTrial) (*Result, error)
	GetTrialsByCustomer(context.Context, *query.Descriptor) (*TrialList, error)
	CountTrialsByCustomer(context.Context, *query.Descriptor) (*Result, error)
	RemoveTrial(context.Context, *RemoveTrialRequest) (*Result, error)
}

func RegisterDataServer(s grpc.ServiceRegistrar, srv DataServer) {
	s.RegisterService(&dataServiceDesc, srv)
}

var dataServiceDesc = grpc.ServiceDesc{
	ServiceName: "runright.v1.Data",
	HandlerType: (*DataServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetTrial", Handler: unaryHandler("/runright.v1.Data/SetTrial", DataServer.SetTrial)},
		{MethodName: "GetTrialsByCustomer", Handler: unaryHandler("/runright.v1.Data/GetTrialsByCustomer", DataServer.GetTrialsByCustomer)},
		{MethodName: "CountTrialsByCustomer", Handler: unaryHandler("/runright.v1.Data/CountTrialsByCustomer", DataServer.CountTrialsByCustomer)},
		{MethodName: "RemoveTrial", Handler: unaryHandler("/runright.v1.Data/RemoveTrial", DataServer.RemoveTrial)},
	},
	Streams: []grpc.StreamDesc{},
}

// ReportsServer handles diagnostics and sale reporting.
type ReportsServer interface {
	GetData(context.Context, *GetDataRequest) (*DataResponse, error)
	GetSaleRecords(context.Context, *SaleRecordsRequest) (*TrialList, error)
	CountSaleRecords(context.Context, *SaleRecordsRequest) (*Result, error)
}

func RegisterReportsServer(s grpc.ServiceRegistrar, srv ReportsServer) {
	s.RegisterService(&reportsServiceDesc, srv)
}

var reportsServiceDesc = grpc.ServiceDesc{
	ServiceName: "runright.v1.Reports",
	HandlerType: (*ReportsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetData", Handler: unaryHandler("/runright.v1.Reports/GetData", ReportsServer.GetData)},
		{MethodName: "GetSaleRecords", Handler: unaryHandler("/runright.v1.Reports/GetSaleRecords", ReportsServer.GetSaleRecords)},
		{MethodName: "CountSaleRecords", Handler: unaryHandler("/runright.v1.Reports/CountSaleRecords", ReportsServer.CountSaleRecords)},
	},
	Streams: []grpc.StreamDesc{},
}
