package tsme

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testEmail     = "jane@example.com"
	testPassword  = "s3cret"
	testCSRFToken = "tok&en/1"

	// testPayload is how the portal embeds {"csrfToken":"tok&en/1","user":"Élodie"}.
	testPayload = `{\"csrfToken\":\"tok\u0026en\/1\",\"user\":\"\\u00c9lodie\"}`
)

func loginPageWithPayload(payload string) string {
	return `<!DOCTYPE html>
<html>
<head>
<script src="/build/runtime.js"></script>
<script>var dataLayer = [];</script>
<script>
	window.tsme_data = JSON.parse("` + payload + `");
</script>
</head>
<body><form method="post"></form></body>
</html>`
}

// fakePortal mimics the login flow and the public-api of the portal.
type fakePortal struct {
	t      *testing.T
	server *httptest.Server

	mu            sync.Mutex
	loginPage     string
	loginStatus   int
	loginGets     int
	loginPosts    int
	lastForm      url.Values
	meteringQuery url.Values

	metersStatus   int
	metersBody     string
	meteringStatus int
	meteringBody   string
}

func newFakePortal(t *testing.T) *fakePortal {
	p := &fakePortal{
		t:              t,
		loginPage:      loginPageWithPayload(testPayload),
		loginStatus:    http.StatusOK,
		metersStatus:   http.StatusOK,
		metersBody:     `{"code":"00","message":"OK","content":{"nbMeters":0,"clientCompteursPro":[]}}`,
		meteringStatus: http.StatusOK,
		meteringBody:   `{"code":"00","message":"OK","content":{"measures":[]}}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(SuezEndpoints.Login, p.handleLogin)
	mux.HandleFunc(SuezEndpoints.Dashboard, p.handleDashboard)
	mux.HandleFunc(SuezEndpoints.MetersList, p.requireSession(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(p.metersStatus)
		fmt.Fprint(w, p.metersBody)
	}))
	mux.HandleFunc(SuezEndpoints.Metering, p.requireSession(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.meteringQuery = r.URL.Query()
		p.mu.Unlock()
		w.WriteHeader(p.meteringStatus)
		fmt.Fprint(w, p.meteringBody)
	}))

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePortal) endpoints() Endpoints {
	endpoints := SuezEndpoints
	endpoints.BaseURL = p.server.URL
	return endpoints
}

func (p *fakePortal) newClient(t *testing.T, email, password string) *Client {
	client, err := NewClient(p.endpoints(), email, password)
	require.NoError(t, err)
	return client
}

func (p *fakePortal) handleLogin(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		p.loginGets++
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "anonymous", Path: "/"})
		w.WriteHeader(p.loginStatus)
		fmt.Fprint(w, p.loginPage)
	case http.MethodPost:
		p.loginPosts++
		require.NoError(p.t, r.ParseForm())
		p.lastForm = r.PostForm

		cookie, err := r.Cookie("PHPSESSID")
		if err != nil || cookie.Value != "anonymous" ||
			r.PostForm.Get(formCSRFToken) != testCSRFToken ||
			r.PostForm.Get(formUsername) != testEmail ||
			r.PostForm.Get(formPassword) != testPassword {
			fmt.Fprint(w, loginPageWithPayload(testPayload))
			return
		}

		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "authenticated", Path: "/"})
		http.Redirect(w, r, r.PostForm.Get(formTargetPath), http.StatusFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (p *fakePortal) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, `<html><head><link rel="canonical" href="%s%s"></head><body>Tableau de bord</body></html>`,
		p.server.URL, SuezEndpoints.Dashboard)
}

func (p *fakePortal) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("PHPSESSID")
		if err != nil || cookie.Value != "authenticated" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"code":"401","message":"Unauthorized","content":null}`)
			return
		}
		next(w, r)
	}
}

func (p *fakePortal) counts() (gets, posts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loginGets, p.loginPosts
}
