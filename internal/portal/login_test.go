package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardPage = `<html><body>
<div class="user-profile"><a href="#"><span> Budi Santoso </span></a></div>
<a href="/index.php/login/logout">Keluar</a>
<a href="/index.php/absensi">Absensi</a>
</body></html>`

const loginFormPage = `<html><body>
<h3>Silakan login dengan akun SIMPEG anda</h3>
<form action="/index.php/login/auth" method="post"></form>
</body></html>`

func TestClassifyLogin_Authenticated(t *testing.T) {
	res := ClassifyLogin(dashboardPage, "1908107010001")

	assert.Equal(t, OutcomeAuthenticated, res.Outcome)
	assert.Equal(t, "Budi Santoso", res.DisplayName)
}

func TestClassifyLogin_Authenticated_LogoutLinkOnly(t *testing.T) {
	body := `<html><a href="/login/logout">Keluar</a></html>`
	res := ClassifyLogin(body, "1908107010001")

	assert.Equal(t, OutcomeAuthenticated, res.Outcome)
	// No profile span on the page; the fallback name is used.
	assert.Equal(t, "1908107010001", res.DisplayName)
}

func TestClassifyLogin_Rejected(t *testing.T) {
	res := ClassifyLogin(loginFormPage, "1908107010001")

	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.NotEmpty(t, res.Reason)
}

func TestClassifyLogin_Indeterminate(t *testing.T) {
	res := ClassifyLogin("<html><body>Maintenance</body></html>", "1908107010001")

	assert.Equal(t, OutcomeIndeterminate, res.Outcome)
	assert.NotEmpty(t, res.Reason)
}

func TestClassifyLogin_EmptyProfileSpanUsesFallback(t *testing.T) {
	body := `<div class="user-profile"><span>   </span></div>`
	res := ClassifyLogin(body, "fallback")

	assert.Equal(t, OutcomeAuthenticated, res.Outcome)
	assert.Equal(t, "fallback", res.DisplayName)
}

func TestLogin_PostsCredentials(t *testing.T) {
	var gotUser, gotPass string

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(loginFormPage))
	})
	mux.HandleFunc("/index.php/login/auth", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotUser = r.PostFormValue("username")
		gotPass = r.PostFormValue("password")
		_, _ = w.Write([]byte(dashboardPage))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	res, err := c.Login(context.Background(), "1908107010001", "rahasia")
	require.NoError(t, err)

	assert.Equal(t, OutcomeAuthenticated, res.Outcome)
	assert.Equal(t, "Budi Santoso", res.DisplayName)
	assert.Equal(t, "1908107010001", gotUser)
	assert.Equal(t, "rahasia", gotPass)
}

func TestLogin_RejectedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(loginFormPage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	res, err := c.Login(context.Background(), "x", "y")
	require.NoError(t, err)

	assert.Equal(t, OutcomeRejected, res.Outcome)
}
