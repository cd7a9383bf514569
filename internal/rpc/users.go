package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"runright.io/internal/auth"
	"runright.io/internal/cms"
	"runright.io/internal/gate"
	"runright.io/internal/ids"
	"runright.io/internal/mail"
	"runright.io/internal/query"
)

const (
	loginFailedDetail = "The username/password is incorrect"

	resetLinkTTLMillis = int64(3 * 60 * 60 * 1000)
	resetMailSubject   = "Password Reset Link"
	resetMailBody      = "Someone requested a password reset for your RUNRIGHT account. " +
		"Please click the following link in order to reset your password. " +
		"This link will expire after 3 hours. https://app.runright.io/auth/login?token=%s"
)

// UsersService implements UsersServer on top of the store.
type UsersService struct {
	store  cms.Store
	mailer mail.Mailer
}

func NewUsersService(store cms.Store, mailer mail.Mailer) *UsersService {
	return &UsersService{store: store, mailer: mailer}
}

// Login verifies credentials and mints a session token. Every failure mode
// reports the same credential error so the response does not reveal whether
// the account exists.
func (s *UsersService) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, status.Error(codes.PermissionDenied, loginFailedDetail)
	}

	user, err := s.store.Users().FindOne(ctx, (&cms.Filter{}).Where("email", email))
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.PermissionDenied, loginFailedDetail)
		}
		return nil, toStatus(err)
	}
	if user.Disabled || user.Locked {
		return nil, status.Error(codes.PermissionDenied, loginFailedDetail)
	}
	if auth.VerifyPassword(user.PasswordHash, req.Password) != nil {
		return nil, status.Error(codes.PermissionDenied, loginFailedDetail)
	}
	if gate.FromWeb(ctx) && user.Role < cms.WebRoleFloor {
		return nil, status.Error(codes.PermissionDenied, loginFailedDetail)
	}

	var company *cms.Company
	if user.CompanyID != "" {
		company, err = s.store.Companies().FindOne(ctx, (&cms.Filter{}).Where("company_id", user.CompanyID))
		if err != nil && !errors.Is(err, cms.ErrNotFound) {
			return nil, toStatus(err)
		}
	}

	p := auth.PrincipalFromUser(user, company, "", 0)
	token, err := auth.GenerateToken(p, auth.TokenTTL)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Session{
		User:          *user,
		Token:         token,
		Type:          p.Type,
		LicenceExpiry: p.LicenceExpiry,
	}, nil
}

// SendPasswordReset issues a reset link for the address in StringQuery. The
// reply is identical whether or not the address matches an account.
func (s *UsersService) SendPasswordReset(ctx context.Context, q *query.Descriptor) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(q.StringQuery))
	if email == "" {
		return &Result{}, nil
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	modified, err := s.store.Users().SetResetToken(ctx, email, token, cms.NowMillis())
	if err != nil {
		return nil, toStatus(err)
	}
	if modified {
		if err := s.mailer.Send(ctx, email, resetMailSubject, fmt.Sprintf(resetMailBody, token)); err != nil {
			return nil, toStatus(err)
		}
	}
	return &Result{}, nil
}

// ResetPassword redeems a reset link and installs the new password.
func (s *UsersService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*Result, error) {
	if req.Token == "" {
		return nil, status.Error(codes.NotFound, "Invalid password reset link")
	}
	if req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "Password cannot be empty")
	}
	user, err := s.store.Users().FindOne(ctx, (&cms.Filter{}).Where("reset_token", req.Token))
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Invalid password reset link")
		}
		return nil, toStatus(err)
	}
	if user.ResetGenerated+resetLinkTTLMillis < cms.NowMillis() {
		return nil, status.Error(codes.NotFound, "Password reset link has expired")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.store.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, toStatus(err)
	}
	if err := s.store.Users().ClearResetToken(ctx, user.ID); err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}

// SetUser creates an account when UserID is blank and edits one otherwise.
// The caller can never grant a role above its own and non-privileged callers
// stay pinned to their own tenant.
func (s *UsersService) SetUser(ctx context.Context, req *SetUserRequest) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, status.Error(codes.InvalidArgument, "Email is required")
	}
	if req.Role > p.Role {
		return nil, status.Error(codes.PermissionDenied, "You do not have the ability to give this role")
	}

	u := &cms.User{
		ID:        req.UserID,
		Email:     email,
		Name:      req.Name,
		Role:      req.Role,
		CompanyID: req.CompanyID,
		BranchID:  req.BranchID,
		Locked:    req.Locked,
		Disabled:  req.Disabled,
	}
	if !p.HasRole(cms.RoleAdmin, cms.RoleDistributor) {
		u.CompanyID = p.CompanyID
	}
	if p.Role == cms.RoleManager {
		u.BranchID = p.BranchID
	}
	if u.CompanyID == "" {
		u.BranchID = ""
	}
	if u.BranchID != "" {
		branchFilter := (&cms.Filter{}).Where("company_id", u.CompanyID).Where("branch_id", u.BranchID)
		if _, err := s.store.Branches().FindOne(ctx, branchFilter); err != nil {
			if errors.Is(err, cms.ErrNotFound) {
				return nil, status.Error(codes.InvalidArgument, "branch_id is invalid")
			}
			return nil, toStatus(err)
		}
	}

	if req.UserID == "" {
		if req.Password == "" {
			return nil, status.Error(codes.InvalidArgument, "Password must be provided for user creation")
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, toStatus(err)
		}
		u.ID = ids.New()
		u.PasswordHash = hash
		u.StampCreation(p.Email)
		if err := s.store.Users().Upsert(ctx, u); err != nil {
			return nil, toStatus(err)
		}
		return &Result{StringResult: u.ID}, nil
	}

	existing, err := s.store.Users().FindOne(ctx, (&cms.Filter{}).Where("user_id", req.UserID))
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Could not find user with specified id")
		}
		return nil, toStatus(err)
	}
	if !p.HasRole(cms.RoleAdmin, cms.RoleDistributor) && existing.CompanyID != p.CompanyID {
		return nil, status.Error(codes.PermissionDenied, "You do not have permission to edit this user")
	}

	u.Audit = existing.Audit
	u.PasswordHash = existing.PasswordHash
	u.ResetToken = existing.ResetToken
	u.ResetGenerated = existing.ResetGenerated
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, toStatus(err)
		}
		u.PasswordHash = hash
	}
	u.StampUpdate(p.Email)
	if err := s.store.Users().Upsert(ctx, u); err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}

var userQueryOptions = query.Options{
	Filterable: []string{"name", "email"},
	Sortable:   []string{"name", "email", "created"},
}

// visibleRoles narrows a user listing to the tiers the caller may see.
func visibleRoles(f *cms.Filter, p auth.Principal) *cms.Filter {
	switch p.Role {
	case cms.RoleAdmin:
		return f
	case cms.RoleDistributor:
		return f.Cond("role", cms.OpIn, []int64{cms.RoleDistributor, cms.RoleStore, cms.RoleTechnician, cms.RoleDevice})
	case cms.RoleTechnician:
		return f.Where("role", cms.RoleTechnician)
	default:
		return f.Cond("role", cms.OpLte, int64(p.Role))
	}
}

func (s *UsersService) GetUsers(ctx context.Context, q *query.Descriptor) (*UserList, error) {
	p, err := gate.Require(ctx, cms.RoleTechnician, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	f := query.Translate(*q, userQueryOptions)
	if q.StringQuery != "" && q.FilterOn != "" && !f.HasField(q.FilterOn) && ids.Valid(q.StringQuery) {
		f.Where("user_id", q.StringQuery)
	}
	query.ApplyCompanyScope(f, p)
	if p.Role == cms.RoleManager {
		f.Where("branch_id", p.BranchID)
	}
	visibleRoles(f, p)

	count, err := s.store.Users().Count(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	if count == 0 {
		return nil, status.Error(codes.NotFound, "No results found for this query")
	}
	users, err := s.store.Users().List(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &UserList{Users: users}, nil
}

func (s *UsersService) CountUsers(ctx context.Context, q *query.Descriptor) (*Result, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	f := query.Translate(*q, userQueryOptions)
	if !p.HasRole(cms.RoleAdmin, cms.RoleDistributor) {
		query.ApplyCompanyScope(f, p)
	}
	visibleRoles(f, p)
	count, err := s.store.Users().Count(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: count}, nil
}

// GetBranchUsers lists the accounts of one branch. StringQuery names the
// branch.
func (s *UsersService) GetBranchUsers(ctx context.Context, q *query.Descriptor) (*UserList, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	branchID := strings.TrimSpace(q.StringQuery)
	if branchID == "" {
		return nil, status.Error(codes.InvalidArgument, "branch_id is required")
	}
	f := (&cms.Filter{}).Where("branch_id", branchID)
	query.ApplyCompanyScope(f, p)
	f.Skip = q.Skip
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	users, err := s.store.Users().List(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &UserList{Users: users}, nil
}

func (s *UsersService) RemoveUser(ctx context.Context, req *RemoveUserRequest) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	f := (&cms.Filter{}).Where("user_id", req.UserID)
	if p.Role == cms.RoleManager {
		f.Where("company_id", p.CompanyID)
	}
	deleted, err := s.store.Users().Delete(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: deleted}, nil
}
