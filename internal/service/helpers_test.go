package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/folio-server/database"
	"github.com/dtroode/folio-server/internal/model"
	"github.com/dtroode/folio-server/internal/password"
	"github.com/dtroode/folio-server/internal/repository/sqldb"
	"github.com/dtroode/folio-server/internal/session"
	"github.com/dtroode/folio-server/internal/testutil"
)

const initialPassword = "initial-pass"

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// outbox is an in-memory Mailer.
type outbox struct {
	mu   sync.Mutex
	msgs []model.EmailMessage
	err  error
}

func (o *outbox) Send(_ context.Context, msg model.EmailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

func (o *outbox) lastCode(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.msgs, "no email sent")
	code := codePattern.FindString(o.msgs[len(o.msgs)-1].Text)
	require.NotEmpty(t, code)
	return code
}

// trail is an in-memory Auditor.
type trail struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (a *trail) Record(_ context.Context, typ model.AuditType, success bool, client model.ClientInfo, detail string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, model.AuditEvent{
		ID: uuid.New(), Type: typ, Success: success, IP: client.IP, UserAgent: client.UserAgent, Detail: detail,
	})
}

func (a *trail) has(typ model.AuditType, success bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.events {
		if e.Type == typ && e.Success == success {
			return true
		}
	}
	return false
}

type fixture struct {
	clock      *testutil.Clock
	creds      *Credentials
	codes      *Codes
	mfa        *MFA
	auth       *Auth
	sessions   *session.Registry
	challenges *session.Registry
	mail       *outbox
	trail      *trail
}

var testClient = model.ClientInfo{IP: "203.0.113.10", UserAgent: "go-test"}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	conn, err := sqldb.NewConnection(ctx, database.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	log := testutil.MakeNoopLogger()
	clock := testutil.NewClock()
	hasher := password.NewBcrypt(bcrypt.MinCost)

	f := &fixture{
		clock:      clock,
		mail:       &outbox{},
		trail:      &trail{},
		sessions:   session.NewRegistry(model.SessionTTL, clock.Now),
		challenges: session.NewRegistry(model.ChallengeTTL, clock.Now),
	}
	f.creds = NewCredentials(sqldb.NewCredentialRepository(conn), hasher, clock.Now, log)
	f.codes = NewCodes(sqldb.NewCodeRepository(conn), model.CodeTTL, clock.Now, log)
	f.mfa = NewMFA(f.creds, f.codes, f.mail, hasher, f.trail, log)
	f.auth = NewAuth(f.creds, f.mfa, f.sessions, f.challenges, f.trail, log)

	require.NoError(t, f.creds.Initialize(ctx, initialPassword))

	return f
}

func (f *fixture) enableMFA(t *testing.T) []string {
	t.Helper()
	res, err := f.mfa.Setup(context.Background(), "admin@example.com", testClient)
	require.NoError(t, err)
	return res.BackupCodes
}

func (f *fixture) passwordIs(t *testing.T, candidate string) bool {
	t.Helper()
	ok, err := f.creds.VerifyPassword(context.Background(), candidate)
	require.NoError(t, err)
	return ok
}
