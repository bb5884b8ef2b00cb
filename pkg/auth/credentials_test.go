package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/oauth2"
)

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("upstream revoked")
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user1",
		"exp": expiresAt.Unix(),
	})

	raw, err := token.SignedString([]byte("test-key"))
	So(err, ShouldBeNil)

	return raw
}

func TestAuthorizeStampsBearer(t *testing.T) {
	Convey("Given static credentials", t, func() {
		creds := Static("opaque-token")
		req := httptest.NewRequest("POST", "/rpc", nil)

		err := creds.Authorize(req)

		Convey("Then the bearer header lands on the request", func() {
			So(err, ShouldBeNil)
			So(req.Header.Get("Authorization"), ShouldEqual, "Bearer opaque-token")
		})
	})
}

func TestAuthorizeAnonymous(t *testing.T) {
	Convey("Given no credentials at all", t, func() {
		var creds *Credentials
		req := httptest.NewRequest("POST", "/rpc", nil)

		Convey("Then the request passes through untouched", func() {
			So(creds.Authorize(req), ShouldBeNil)
			So(req.Header.Get("Authorization"), ShouldBeEmpty)
		})
	})
}

func TestAuthorizeJWT(t *testing.T) {
	Convey("Given credentials holding a live JWT", t, func() {
		raw := signedToken(t, time.Now().Add(time.Hour))
		creds := Static(raw)
		req := httptest.NewRequest("POST", "/rpc", nil)

		So(creds.Authorize(req), ShouldBeNil)
		So(req.Header.Get("Authorization"), ShouldEqual, "Bearer "+raw)
	})

	Convey("Given credentials holding an expired JWT", t, func() {
		raw := signedToken(t, time.Now().Add(-time.Hour))
		creds := Static(raw)
		req := httptest.NewRequest("POST", "/rpc", nil)

		Convey("Then the token still goes out, the agent gets to reject it", func() {
			So(creds.Authorize(req), ShouldBeNil)
			So(req.Header.Get("Authorization"), ShouldEqual, "Bearer "+raw)
		})
	})
}

func TestAuthorizeSourceFailure(t *testing.T) {
	Convey("Given a token source that cannot deliver", t, func() {
		creds := NewCredentials(failingSource{})
		req := httptest.NewRequest("POST", "/rpc", nil)

		err := creds.Authorize(req)

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "upstream revoked")
	})
}

func TestAuthorizeRateLimited(t *testing.T) {
	Convey("Given credentials paced at one call per minute", t, func() {
		creds := Static("tok", WithRateLimiter(NewRateLimiter(1, time.Minute)))

		first := creds.Authorize(httptest.NewRequest("POST", "/rpc", nil))
		second := creds.Authorize(httptest.NewRequest("POST", "/rpc", nil))

		Convey("Then the second call is refused locally", func() {
			So(first, ShouldBeNil)
			So(second, ShouldNotBeNil)
			So(second.Error(), ShouldContainSubstring, "rate limit exceeded")
		})
	})
}
