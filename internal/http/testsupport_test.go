package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
	"github.com/Ydzz18/photo-web-sub000/internal/email"
	"github.com/Ydzz18/photo-web-sub000/internal/service"
)

type stubAccountRepo struct {
	byID map[string]domain.Account
}

func (m *stubAccountRepo) Create(_ context.Context, account domain.Account) error {
	for _, existing := range m.byID {
		if existing.Username == account.Username || existing.Email == account.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	m.byID[account.ID] = account
	return nil
}

func (m *stubAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	account, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return account, nil
}

func (m *stubAccountRepo) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	for _, account := range m.byID {
		if account.Username == username {
			return account, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *stubAccountRepo) GetByEmail(_ context.Context, emailAddr string) (domain.Account, error) {
	for _, account := range m.byID {
		if account.Email == emailAddr {
			return account, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *stubAccountRepo) GetByIdentifier(_ context.Context, identifier string) (domain.Account, error) {
	for _, account := range m.byID {
		if account.Username == identifier || account.Email == identifier {
			return account, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *stubAccountRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.PasswordHash = passwordHash
	m.byID[id] = account
	return nil
}

func (m *stubAccountRepo) UpdateEmail(_ context.Context, id, emailAddr string, status domain.EmailStatus) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Email = emailAddr
	account.EmailStatus = status
	m.byID[id] = account
	return nil
}

func (m *stubAccountRepo) SetEmailStatus(_ context.Context, id string, status domain.EmailStatus) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.EmailStatus = status
	m.byID[id] = account
	return nil
}

func (m *stubAccountRepo) SetTwoFactor(_ context.Context, id string, mode domain.TwoFactorMode) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.TwoFactor = mode
	m.byID[id] = account
	return nil
}

func (m *stubAccountRepo) UpdateProfile(_ context.Context, id, displayName, bio string) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.DisplayName = displayName
	account.Bio = bio
	m.byID[id] = account
	return nil
}

type stubTokenRepo struct {
	tokens []domain.SecurityToken
}

func (m *stubTokenRepo) CreateExclusive(_ context.Context, token domain.SecurityToken) error {
	for i := range m.tokens {
		if m.tokens[i].AccountID == token.AccountID && m.tokens[i].Purpose == token.Purpose && m.tokens[i].ConsumedAt == nil {
			consumedAt := token.CreatedAt
			m.tokens[i].ConsumedAt = &consumedAt
		}
	}
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *stubTokenRepo) GetActiveByHash(_ context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (domain.SecurityToken, error) {
	for _, token := range m.tokens {
		if token.TokenHash == tokenHash && token.Purpose == purpose && token.ConsumedAt == nil && token.ExpiresAt.After(now) {
			return token, nil
		}
	}
	return domain.SecurityToken{}, pgx.ErrNoRows
}

func (m *stubTokenRepo) ConsumeByHash(_ context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (string, error) {
	for i := range m.tokens {
		token := m.tokens[i]
		if token.TokenHash == tokenHash && token.Purpose == purpose && token.ConsumedAt == nil && token.ExpiresAt.After(now) {
			m.tokens[i].ConsumedAt = &now
			return token.AccountID, nil
		}
	}
	return "", pgx.ErrNoRows
}

func (m *stubTokenRepo) MarkConsumed(_ context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) error {
	for i := range m.tokens {
		if m.tokens[i].TokenHash == tokenHash && m.tokens[i].Purpose == purpose && m.tokens[i].ConsumedAt == nil {
			m.tokens[i].ConsumedAt = &now
		}
	}
	return nil
}

type stubCodeRepo struct {
	codes []domain.TwoFactorCode
}

func (m *stubCodeRepo) Create(_ context.Context, code domain.TwoFactorCode) error {
	m.codes = append(m.codes, code)
	return nil
}

func (m *stubCodeRepo) DeleteOlderThan(_ context.Context, accountID string, cutoff time.Time) error {
	kept := m.codes[:0]
	for _, code := range m.codes {
		if code.AccountID == accountID && !code.CreatedAt.After(cutoff) {
			continue
		}
		kept = append(kept, code)
	}
	m.codes = kept
	return nil
}

func (m *stubCodeRepo) ConsumeMatching(_ context.Context, accountID, codeHash string, cutoff time.Time) (bool, error) {
	for i, code := range m.codes {
		if code.AccountID == accountID && code.CodeHash == codeHash && code.CreatedAt.After(cutoff) {
			m.codes = append(m.codes[:i], m.codes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *stubCodeRepo) DeleteForAccount(_ context.Context, accountID string) error {
	kept := m.codes[:0]
	for _, code := range m.codes {
		if code.AccountID != accountID {
			kept = append(kept, code)
		}
	}
	m.codes = kept
	return nil
}

type stubNotificationRepo struct {
	notes []domain.Notification
}

func (m *stubNotificationRepo) ListByRecipient(_ context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range m.notes {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *stubNotificationRepo) MarkAllRead(_ context.Context, recipientID string, now time.Time) error {
	for i := range m.notes {
		if m.notes[i].RecipientID == recipientID && m.notes[i].ReadAt == nil {
			readAt := now
			m.notes[i].ReadAt = &readAt
		}
	}
	return nil
}

func (m *stubNotificationRepo) add(recipientID, actorID string, kind domain.NotificationKind, photoID, commentID *string) {
	m.notes = append(m.notes, domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		ActorID:     actorID,
		Kind:        kind,
		PhotoID:     photoID,
		CommentID:   commentID,
		CreatedAt:   time.Now().UTC(),
	})
}

type stubPhotoRepo struct {
	photos   map[string]domain.Photo
	likes    map[string]map[string]bool
	comments map[string]domain.Comment
	notes    *stubNotificationRepo
}

func (m *stubPhotoRepo) Create(_ context.Context, photo domain.Photo) error {
	m.photos[photo.ID] = photo
	return nil
}

func (m *stubPhotoRepo) GetByID(_ context.Context, id string) (domain.Photo, error) {
	photo, ok := m.photos[id]
	if !ok {
		return domain.Photo{}, pgx.ErrNoRows
	}
	return photo, nil
}

func (m *stubPhotoRepo) DeleteOwned(_ context.Context, id, ownerID string) (bool, error) {
	photo, ok := m.photos[id]
	if !ok || photo.OwnerID != ownerID {
		return false, nil
	}
	delete(m.photos, id)
	return true, nil
}

func (m *stubPhotoRepo) ListByOwner(_ context.Context, ownerID string, limit int) ([]domain.Photo, error) {
	var out []domain.Photo
	for _, photo := range m.photos {
		if photo.OwnerID == ownerID {
			out = append(out, photo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *stubPhotoRepo) Like(_ context.Context, photoID, accountID string, _ time.Time) (bool, error) {
	photo, ok := m.photos[photoID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if m.likes[photoID] == nil {
		m.likes[photoID] = make(map[string]bool)
	}
	if m.likes[photoID][accountID] {
		return false, nil
	}
	m.likes[photoID][accountID] = true
	photo.LikeCount++
	m.photos[photoID] = photo
	if photo.OwnerID != accountID {
		m.notes.add(photo.OwnerID, accountID, domain.NotifyLike, &photoID, nil)
	}
	return true, nil
}

func (m *stubPhotoRepo) Unlike(_ context.Context, photoID, accountID string) (bool, error) {
	if !m.likes[photoID][accountID] {
		return false, nil
	}
	delete(m.likes[photoID], accountID)
	photo := m.photos[photoID]
	photo.LikeCount--
	m.photos[photoID] = photo
	return true, nil
}

func (m *stubPhotoRepo) AddComment(_ context.Context, comment domain.Comment) error {
	photo, ok := m.photos[comment.PhotoID]
	if !ok {
		return pgx.ErrNoRows
	}
	m.comments[comment.ID] = comment
	photo.CommentCount++
	m.photos[comment.PhotoID] = photo
	if photo.OwnerID != comment.AuthorID {
		commentID := comment.ID
		photoID := comment.PhotoID
		m.notes.add(photo.OwnerID, comment.AuthorID, domain.NotifyComment, &photoID, &commentID)
	}
	return nil
}

func (m *stubPhotoRepo) DeleteComment(_ context.Context, commentID, authorID string) (bool, error) {
	comment, ok := m.comments[commentID]
	if !ok || comment.AuthorID != authorID {
		return false, nil
	}
	delete(m.comments, commentID)
	photo := m.photos[comment.PhotoID]
	photo.CommentCount--
	m.photos[comment.PhotoID] = photo
	return true, nil
}

type stubFollowRepo struct {
	pairs map[string]bool
	notes *stubNotificationRepo
}

func (m *stubFollowRepo) Follow(_ context.Context, followerID, followeeID string, _ time.Time) (bool, error) {
	key := followerID + "|" + followeeID
	if m.pairs[key] {
		return false, nil
	}
	m.pairs[key] = true
	m.notes.add(followeeID, followerID, domain.NotifyFollow, nil, nil)
	return true, nil
}

func (m *stubFollowRepo) Unfollow(_ context.Context, followerID, followeeID string) (bool, error) {
	key := followerID + "|" + followeeID
	if !m.pairs[key] {
		return false, nil
	}
	delete(m.pairs, key)
	return true, nil
}

func (m *stubFollowRepo) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	return m.pairs[followerID+"|"+followeeID], nil
}

type stubSentEmail struct {
	to   string
	kind email.Kind
	vars email.Vars
}

type stubSender struct {
	sent []stubSentEmail
	err  error
}

func (m *stubSender) Send(_ context.Context, toEmail string, kind email.Kind, vars email.Vars) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, stubSentEmail{to: toEmail, kind: kind, vars: vars})
	return nil
}

func (m *stubSender) last() stubSentEmail {
	if len(m.sent) == 0 {
		return stubSentEmail{}
	}
	return m.sent[len(m.sent)-1]
}

type testServer struct {
	router *gin.Engine
	sender *stubSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	accounts := &stubAccountRepo{byID: make(map[string]domain.Account)}
	notes := &stubNotificationRepo{}
	photos := &stubPhotoRepo{
		photos:   make(map[string]domain.Photo),
		likes:    make(map[string]map[string]bool),
		comments: make(map[string]domain.Comment),
		notes:    notes,
	}
	follows := &stubFollowRepo{pairs: make(map[string]bool), notes: notes}
	sender := &stubSender{}

	creds := service.NewCredentialService(logger, accounts)
	tokenSvc := service.NewTokenService(logger, &stubTokenRepo{})
	codeSvc := service.NewCodeService(logger, &stubCodeRepo{})
	sessions := service.NewSessionService(service.NewMemorySessionStore(), time.Hour)
	authSvc := service.NewAuthService(
		logger, accounts, creds, tokenSvc, codeSvc, sessions,
		sender, nil, nil, "https://photos.example",
	)
	photoSvc := service.NewPhotoService(logger, photos, follows, notes, accounts)
	codec := service.NewSessionTokenCodec("test-secret")

	router := NewRouter(
		logger, sessions, codec,
		NewAuthHandler(logger, authSvc, codec),
		NewProfileHandler(logger, creds, authSvc),
		NewPhotoHandler(logger, photoSvc),
	)
	return &testServer{router: router, sender: sender}
}

func (ts *testServer) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	parts := strings.SplitN(link, "token=", 2)
	if len(parts) != 2 || parts[1] == "" {
		t.Fatalf("no token in link %q", link)
	}
	return parts[1]
}

func (ts *testServer) register(t *testing.T, username, emailAddr, password string) *http.Cookie {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/auth/register/step1",
		`{"first_name":"Ana","last_name":"Pérez"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("step1: status %d body %s", w.Code, w.Body.String())
	}
	step1Cookie := sessionCookie(t, w)

	w = ts.do(t, http.MethodPost, "/auth/register/step2",
		`{"username":"`+username+`","email":"`+emailAddr+`","password":"`+password+`"}`,
		[]*http.Cookie{step1Cookie})
	if w.Code != http.StatusCreated {
		t.Fatalf("step2: status %d body %s", w.Code, w.Body.String())
	}
	return sessionCookie(t, w)
}
