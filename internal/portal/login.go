package portal

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

// LoginOutcome is the classification of a login response body.
type LoginOutcome int

const (
	// OutcomeAuthenticated means dashboard markers were found.
	OutcomeAuthenticated LoginOutcome = iota
	// OutcomeRejected means the login form came back: bad credentials.
	OutcomeRejected
	// OutcomeIndeterminate means no known marker matched. The page layout
	// may have changed; this is surfaced distinctly, never folded into
	// success or failure.
	OutcomeIndeterminate
)

// LoginResult is the classified outcome of a login submission.
type LoginResult struct {
	Outcome     LoginOutcome
	DisplayName string // set when Authenticated
	Reason      string // set when Rejected or Indeterminate
}

// Markers probed on the login response body. The first three indicate the
// dashboard; the last indicates the login form was served again.
const (
	markerUserProfile = "user-profile"
	markerAttendance  = "/index.php/absensi"
	markerLogout      = "/login/logout"
	markerLoginForm   = "login dengan akun simpeg"
)

// reDisplayName grabs the first span text after the user-profile block.
var reDisplayName = regexp.MustCompile(`(?s)user-profile.*?<span>(.*?)</span>`)

// ClassifyLogin interprets a login response body. fallbackName is used as the
// display name when the profile span cannot be located.
func ClassifyLogin(body, fallbackName string) LoginResult {
	lower := strings.ToLower(body)

	hasProfile := strings.Contains(body, markerUserProfile)
	hasAttendance := strings.Contains(body, markerAttendance)
	hasLogout := strings.Contains(body, markerLogout)
	hasLoginForm := strings.Contains(lower, markerLoginForm)

	if hasProfile || hasAttendance || hasLogout {
		name := fallbackName
		if m := reDisplayName.FindStringSubmatch(body); m != nil {
			if s := strings.TrimSpace(m[1]); s != "" {
				name = s
			}
		}
		return LoginResult{Outcome: OutcomeAuthenticated, DisplayName: name}
	}

	if hasLoginForm {
		return LoginResult{Outcome: OutcomeRejected, Reason: "NPM atau password salah"}
	}

	return LoginResult{Outcome: OutcomeIndeterminate, Reason: "halaman login tidak dikenali"}
}

// Login performs the two-step login flow: fetch the base page for cookies,
// then post credentials and classify the response. Network failures are
// returned as errors; credential rejection is a LoginResult, not an error.
func (c *Client) Login(ctx context.Context, npm, password string) (LoginResult, error) {
	if _, err := c.Get(ctx, "/"); err != nil {
		return LoginResult{}, err
	}

	resp, err := c.PostForm(ctx, loginPath, url.Values{
		"username": {npm},
		"password": {password},
	})
	if err != nil {
		return LoginResult{}, err
	}

	return ClassifyLogin(resp.Body, npm), nil
}
