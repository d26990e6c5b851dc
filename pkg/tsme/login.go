package tsme

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

/*

	Login simulates a user signing in on the portal's login form.

	1. GET the login page. The page bootstraps its front-end with an inline script:

		window.tsme_data = JSON.parse("{\"csrfToken\":\"...\", ...}")

	   The argument is a JSON document serialized a second time as a string literal, so it is
	   decoded twice: once to unescape the literal (\uXXXX sequences, \/ and \"), once to read the
	   object. The csrfToken field is the form's CSRF token. See extractCSRFToken().

	2. POST the login form with the credentials, the dashboard as target path and the token.
	   Cookies set by step 1 must be sent back, hence the cookie jar.

	3. On success the portal ends up on the dashboard, whose <link rel="canonical"> points at the
	   dashboard path. Any other page (the login form again, an error page) means the credentials
	   were rejected.

*/

const (
	bootstrapMarker = "window.tsme_data = JSON.parse"

	formUsername   = "tsme_user_login[_username]"
	formPassword   = "tsme_user_login[_password]"
	formTargetPath = "tsme_user_login[_target_path]"
	formCSRFToken  = "_csrf_token"
)

var bootstrapPayloadRegex = regexp.MustCompile(`JSON\.parse\("(.+?)"\)`)

type bootstrapPayload struct {
	CSRFToken string `json:"csrfToken"`
}

// Login establishes a session. Data calls log in on their own when needed; calling Login
// explicitly always runs the whole flow again and drops the previous session state first.
func (c *Client) Login(ctx context.Context) error {
	c.loggedIn = false
	zap.L().Info("auth: logging in", zap.String("email", c.email))

	csrfToken, err := c.getCSRFToken(ctx)
	if err != nil {
		return err
	}
	zap.L().Debug("auth: got csrf token", zap.Int("length", len(csrfToken)))

	err = c.submitCredentials(ctx, csrfToken)
	if err != nil {
		return err
	}

	c.loggedIn = true
	zap.L().Info("auth: logged in")
	return nil
}

func (c *Client) getCSRFToken(ctx context.Context) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		Get(c.endpoints.Login)
	if err != nil {
		return "", authError(ErrLoginPreparation, fmt.Errorf("failed to get login page: %w", err))
	}

	if !isSuccess(res.StatusCode()) {
		return "", authError(ErrLoginPreparation, fmt.Errorf("bad status code: %d", res.StatusCode()))
	}

	return extractCSRFToken(res.Body())
}

func (c *Client) submitCredentials(ctx context.Context, csrfToken string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		SetFormData(map[string]string{
			formUsername:   c.email,
			formPassword:   c.password,
			formTargetPath: c.endpoints.Dashboard,
			formCSRFToken:  csrfToken,
		}).
		Post(c.endpoints.Login)
	if err != nil {
		return authError(ErrLoginRequest, fmt.Errorf("failed to submit credentials: %w", err))
	}

	if !isSuccess(res.StatusCode()) {
		return authError(ErrLoginRequest, fmt.Errorf("bad status code: %d", res.StatusCode()))
	}

	doc, err := parseDocument(res.Body())
	if err != nil {
		return authError(ErrInvalidCredentials, err)
	}

	_, onDashboard := findLinkHref(doc, "canonical", func(href string) bool {
		return strings.Contains(href, c.endpoints.Dashboard)
	})
	if !onDashboard {
		return authError(ErrInvalidCredentials, nil)
	}

	return nil
}

func extractCSRFToken(page []byte) (string, error) {
	doc, err := parseDocument(page)
	if err != nil {
		return "", authError(ErrCSRFSourceNotFound, err)
	}

	script, ok := findScript(doc, func(text string) bool {
		return strings.Contains(text, bootstrapMarker)
	})
	if !ok {
		return "", authError(ErrCSRFSourceNotFound, nil)
	}

	payload, err := decodeBootstrapPayload(script)
	if err != nil {
		return "", authError(ErrPayloadExtraction, err)
	}

	if payload.CSRFToken == "" {
		return "", authError(ErrCSRFTokenMissing, nil)
	}

	return payload.CSRFToken, nil
}

func decodeBootstrapPayload(script string) (bootstrapPayload, error) {
	groups := bootstrapPayloadRegex.FindStringSubmatch(script)
	if len(groups) < 2 || groups[1] == "" {
		return bootstrapPayload{}, fmt.Errorf("JSON.parse argument not found")
	}

	var decoded string
	err := json.Unmarshal([]byte(`"`+groups[1]+`"`), &decoded)
	if err != nil {
		return bootstrapPayload{}, fmt.Errorf("failed to unescape string literal: %w", err)
	}

	var payload bootstrapPayload
	err = json.Unmarshal([]byte(decoded), &payload)
	if err != nil {
		return bootstrapPayload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
