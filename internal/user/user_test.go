package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
)

// stubRepo implements Repository in memory.
type stubRepo struct {
	users map[string]*User
	favs  map[string]*string
	order []string
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[string]*User{}, favs: map[string]*string{}}
}

func (s *stubRepo) Create(_ context.Context, u *User) error {
	if _, ok := s.users[u.Login]; ok {
		return ErrAlreadyExist
	}
	cp := *u
	s.users[u.Login] = &cp
	return nil
}

func (s *stubRepo) GetByLogin(_ context.Context, login string) (*User, error) {
	u, ok := s.users[login]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	if f := s.favs[login]; f != nil {
		cp.Favorites = SplitFavorites(*f)
	}
	return &cp, nil
}

func (s *stubRepo) LoginTaken(_ context.Context, login string) (bool, error) {
	_, ok := s.users[login]
	return ok, nil
}

func (s *stubRepo) PhoneTaken(_ context.Context, phone, except string) (bool, error) {
	for _, u := range s.users {
		if u.Phone == phone && u.Login != except {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) Update(_ context.Context, login string, f Fields) error {
	u, ok := s.users[login]
	if !ok {
		return ErrNotFound
	}
	if f.Role != nil {
		u.Role = *f.Role
		s.order = append(s.order, "role")
	}
	if f.Phone != nil {
		u.Phone = *f.Phone
		s.order = append(s.order, "phone")
	}
	if f.PasswordHash != nil {
		u.PasswordHash = *f.PasswordHash
		s.order = append(s.order, "password")
	}
	if f.Login != nil {
		delete(s.users, login)
		u.Login = *f.Login
		s.users[u.Login] = u
		s.order = append(s.order, "login")
	}
	return nil
}

func (s *stubRepo) SetFavorites(_ context.Context, login string, favs *string) error {
	if _, ok := s.users[login]; !ok {
		return ErrNotFound
	}
	s.favs[login] = favs
	return nil
}

type stubCatalog map[string]bool

func (c stubCatalog) Existing(_ context.Context, names []string) ([]string, error) {
	var out []string
	for _, n := range names {
		if c[n] {
			out = append(out, n)
		}
	}
	return out, nil
}

var ctx = context.Background()

func strp(s string) *string { return &s }

func newService(t *testing.T) (*Service, *stubRepo) {
	t.Helper()
	repo := newStubRepo()
	svc := NewService(repo, stubCatalog{"Latte": true, "Bagel": true, "Mocha": true})
	return svc, repo
}

func mustSignUp(t *testing.T, svc *Service, login, pw, phone string) {
	t.Helper()
	if _, err := svc.SignUp(ctx, login, pw, phone); err != nil {
		t.Fatalf("signup %s: %v", login, err)
	}
}

func promote(repo *stubRepo, login string, r auth.Role) { repo.users[login].Role = r }

func TestSignUpAndAuthenticate(t *testing.T) {
	svc, repo := newService(t)
	mustSignUp(t, svc, "alice", "pw1", "5551234567")

	u := repo.users["alice"]
	if u.Role != auth.Customer || repo.favs["alice"] != nil {
		t.Fatalf("new user=%+v", u)
	}
	if u.PasswordHash == "pw1" {
		t.Fatalf("password stored in clear")
	}

	sess, err := svc.Authenticate(ctx, "alice", "pw1")
	if err != nil || sess.Login != "alice" || sess.Role != auth.Customer {
		t.Fatalf("auth=%+v,%v", sess, err)
	}

	_, errWrong := svc.Authenticate(ctx, "alice", "wrong")
	_, errMissing := svc.Authenticate(ctx, "nobody", "pw1")
	if !errors.Is(errWrong, apperr.ErrAuthFailed) || !errors.Is(errMissing, apperr.ErrAuthFailed) {
		t.Fatalf("wrong=%v missing=%v", errWrong, errMissing)
	}
	if errWrong.Error() != errMissing.Error() {
		t.Fatalf("failures must look the same")
	}
}

func TestMultibytePasswordAtLimit(t *testing.T) {
	svc, _ := newService(t)
	long := strings.Repeat("é", MaxPasswordLen)
	mustSignUp(t, svc, "zoe", long, "5550001111")

	if _, err := svc.Authenticate(ctx, "zoe", long); err != nil {
		t.Fatalf("auth with full password: %v", err)
	}
	// same first 72 bytes, different tail
	other := strings.Repeat("é", MaxPasswordLen-1) + "e"
	if _, err := svc.Authenticate(ctx, "zoe", other); !errors.Is(err, apperr.ErrAuthFailed) {
		t.Fatalf("tail ignored: %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newService(t)
	mustSignUp(t, svc, "alice", "pw1", "5551234567")

	cases := []struct{ login, pw, phone string }{
		{"", "pw", "1"},
		{strings.Repeat("a", 51), "pw", "1"},
		{"bob", "", "1"},
		{"bob", strings.Repeat("p", 51), "1"},
		{"bob", "pw", "12345678901234567"},
		{"alice", "pw", "999"},
		{"bob", "pw", "5551234567"},
	}
	for _, c := range cases {
		if _, err := svc.SignUp(ctx, c.login, c.pw, c.phone); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("signup(%q,%q,%q) err=%v", c.login, c.pw, c.phone, err)
		}
	}
}

func TestRoleOf(t *testing.T) {
	svc, repo := newService(t)
	mustSignUp(t, svc, "mo", "pw", "1")
	promote(repo, "mo", auth.Manager)
	r, err := svc.RoleOf(ctx, "mo")
	if err != nil || r != auth.Manager {
		t.Fatalf("role=%q err=%v", r, err)
	}
	if _, err := svc.RoleOf(ctx, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("ghost: %v", err)
	}
}

func TestUpdateSelfPhoneKeepsSession(t *testing.T) {
	svc, _ := newService(t)
	mustSignUp(t, svc, "alice", "pw1", "1")
	mustSignUp(t, svc, "bob", "pw2", "2")
	sess, _ := svc.Authenticate(ctx, "alice", "pw1")

	if _, err := svc.UpdateSelf(ctx, sess, ProfileUpdate{Phone: strp("2")}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("phone collision accepted: %v", err)
	}
	reauth, err := svc.UpdateSelf(ctx, sess, ProfileUpdate{Phone: strp("3")})
	if err != nil || reauth {
		t.Fatalf("phone change: reauth=%v err=%v", reauth, err)
	}
	if err := svc.Revalidate(ctx, sess); err != nil {
		t.Fatalf("session should survive a phone change: %v", err)
	}
}

func TestUpdateSelfPasswordForcesRelogin(t *testing.T) {
	svc, _ := newService(t)
	mustSignUp(t, svc, "alice", "pw1", "1")
	sess, _ := svc.Authenticate(ctx, "alice", "pw1")

	reauth, err := svc.UpdateSelf(ctx, sess, ProfileUpdate{Password: strp("pw2")})
	if err != nil || !reauth {
		t.Fatalf("reauth=%v err=%v", reauth, err)
	}
	if err := svc.Revalidate(ctx, sess); !errors.Is(err, apperr.ErrReauthRequired) {
		t.Fatalf("old session still valid: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice", "pw2"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestUpdateSelfLoginAndRoleManagerOnly(t *testing.T) {
	svc, repo := newService(t)
	mustSignUp(t, svc, "alice", "pw1", "1")
	mustSignUp(t, svc, "mo", "pw", "2")
	promote(repo, "mo", auth.Manager)

	cust, _ := svc.Authenticate(ctx, "alice", "pw1")
	if _, err := svc.UpdateSelf(ctx, cust, ProfileUpdate{Login: strp("alicia")}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("customer renamed self: %v", err)
	}
	emp := auth.Employee
	if _, err := svc.UpdateSelf(ctx, cust, ProfileUpdate{Role: &emp}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("customer promoted self: %v", err)
	}

	mgr, _ := svc.Authenticate(ctx, "mo", "pw")
	reauth, err := svc.UpdateSelf(ctx, mgr, ProfileUpdate{Login: strp("maurice"), Phone: strp("22")})
	if err != nil || !reauth {
		t.Fatalf("reauth=%v err=%v", reauth, err)
	}
	if repo.order[len(repo.order)-1] != "login" {
		t.Fatalf("login must be renamed last, order=%v", repo.order)
	}
	if u := repo.users["maurice"]; u == nil || u.Phone != "22" {
		t.Fatalf("rename lost the other fields: %+v", u)
	}
}

func TestUpdateOther(t *testing.T) {
	svc, repo := newService(t)
	mustSignUp(t, svc, "alice", "pw1", "1")
	mustSignUp(t, svc, "eve", "pw", "2")
	mustSignUp(t, svc, "mo", "pw", "3")
	promote(repo, "eve", auth.Employee)
	promote(repo, "mo", auth.Manager)

	emp, _ := svc.Authenticate(ctx, "eve", "pw")
	mgr, _ := svc.Authenticate(ctx, "mo", "pw")

	role := auth.Employee
	if err := svc.UpdateOther(ctx, emp, "alice", ProfileUpdate{Role: &role}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("employee edited another user: %v", err)
	}
	if err := svc.UpdateOther(ctx, mgr, "mo", ProfileUpdate{Phone: strp("9")}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("self-target accepted: %v", err)
	}
	if err := svc.UpdateOther(ctx, mgr, "ghost", ProfileUpdate{Phone: strp("9")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing target: %v", err)
	}
	bad := auth.Role("Owner")
	if err := svc.UpdateOther(ctx, mgr, "alice", ProfileUpdate{Role: &bad}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad role accepted: %v", err)
	}

	aliceSess, _ := svc.Authenticate(ctx, "alice", "pw1")
	if err := svc.UpdateOther(ctx, mgr, "alice", ProfileUpdate{Role: &role}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if repo.users["alice"].Role != auth.Employee {
		t.Fatalf("role not stored")
	}
	if err := svc.Revalidate(ctx, aliceSess); !errors.Is(err, apperr.ErrReauthRequired) {
		t.Fatalf("role change must invalidate the target's session: %v", err)
	}
}

func TestFavorites(t *testing.T) {
	svc, repo := newService(t)
	mustSignUp(t, svc, "alice", "pw1", "1")
	mustSignUp(t, svc, "bob", "pw2", "2")
	alice, _ := svc.Authenticate(ctx, "alice", "pw1")

	if err := svc.SetFavorites(ctx, alice, "bob", []string{"Latte"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("edited someone else's favorites: %v", err)
	}
	if err := svc.SetFavorites(ctx, alice, "alice", []string{"Latte", "Unicorn"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("unknown item accepted: %v", err)
	}
	if repo.favs["alice"] != nil {
		t.Fatalf("failed set must not write")
	}

	if err := svc.SetFavorites(ctx, alice, "alice", []string{"Latte", " Bagel", "Latte"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := *repo.favs["alice"]; got != "Latte, Bagel" {
		t.Fatalf("stored=%q", got)
	}

	if err := svc.SetFavorites(ctx, alice, "alice", []string{"Mocha"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := *repo.favs["alice"]; got != "Mocha" {
		t.Fatalf("replace-all expected, stored=%q", got)
	}

	if err := svc.ClearFavorites(ctx, alice, "alice"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if repo.favs["alice"] != nil {
		t.Fatalf("clear should store NULL")
	}
}

func TestFavoritesLengthBound(t *testing.T) {
	repo := newStubRepo()
	cat := stubCatalog{}
	var items []string
	for i := 0; i < 10; i++ {
		name := strings.Repeat(string(rune('a'+i)), 40)
		cat[name] = true
		items = append(items, name)
	}
	svc := NewService(repo, cat)
	mustSignUp(t, svc, "alice", "pw1", "1")
	alice, _ := svc.Authenticate(ctx, "alice", "pw1")

	// 10 * 40 + 9 * 2 separators = 418
	if err := svc.SetFavorites(ctx, alice, "alice", items); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("over-long favorites accepted: %v", err)
	}
	// 9 * 40 + 8 * 2 = 376
	if err := svc.SetFavorites(ctx, alice, "alice", items[:9]); err != nil {
		t.Fatalf("376 chars rejected: %v", err)
	}
}

func TestSplitFavorites(t *testing.T) {
	got := SplitFavorites("Latte, Bagel,Mocha ,")
	if strings.Join(got, "|") != "Latte|Bagel|Mocha" {
		t.Fatalf("got=%v", got)
	}
	if SplitFavorites("  ") != nil {
		t.Fatalf("blank should be nil")
	}
}
