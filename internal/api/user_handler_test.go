package api_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid signup returns 201 with public user and token", func(t *testing.T) {
		a := newTestAPI(t)

		rec := a.do(t, http.MethodPost, "/users", "", map[string]interface{}{
			"name":     "fatih young",
			"email":    "Young@Example.com",
			"password": "computer098",
			"age":      21,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body, "user")
		assert.Contains(t, body, "token")

		var user map[string]interface{}
		require.NoError(t, json.Unmarshal(body["user"], &user))
		assert.Equal(t, "young@example.com", user["email"], "email should be normalized")
		assert.NotContains(t, user, "password", "password must never be serialized")
		assert.NotContains(t, user, "hashed_password")
		assert.NotContains(t, user, "tokens")
		assert.NotContains(t, user, "avatar")

		require.Len(t, a.mail.WelcomeCalls, 1)
		assert.Equal(t, "young@example.com", a.mail.WelcomeCalls[0].Email)
	})

	t.Run("the issued token is immediately usable", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodGet, "/users/me", resp.Token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("duplicate email returns 400", func(t *testing.T) {
		a := newTestAPI(t)
		a.signup(t, "first", "taken@example.com", "computer098")

		rec := a.do(t, http.MethodPost, "/users", "", map[string]interface{}{
			"name":     "second",
			"email":    "taken@example.com",
			"password": "computer098",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("short password returns 400", func(t *testing.T) {
		a := newTestAPI(t)

		rec := a.do(t, http.MethodPost, "/users", "", map[string]interface{}{
			"name":     "fatih young",
			"email":    "young@example.com",
			"password": "123456",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid email returns 400", func(t *testing.T) {
		a := newTestAPI(t)

		rec := a.do(t, http.MethodPost, "/users", "", map[string]interface{}{
			"name":     "fatih young",
			"email":    "not-an-email",
			"password": "computer098",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials return a fresh token and keep old sessions", func(t *testing.T) {
		a := newTestAPI(t)
		first := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodPost, "/users/login", "", map[string]interface{}{
			"email":    "young@example.com",
			"password": "computer098",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var second struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
		assert.NotEqual(t, first.Token, second.Token)

		// Both sessions are live.
		assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/users/me", first.Token, nil).Code)
		assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/users/me", second.Token, nil).Code)
	})

	t.Run("wrong password returns 400 with a generic message", func(t *testing.T) {
		a := newTestAPI(t)
		a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodPost, "/users/login", "", map[string]interface{}{
			"email":    "young@example.com",
			"password": "wrongpassword",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unable to login")
	})

	t.Run("unknown email is indistinguishable from a wrong password", func(t *testing.T) {
		a := newTestAPI(t)

		rec := a.do(t, http.MethodPost, "/users/login", "", map[string]interface{}{
			"email":    "nobody@example.com",
			"password": "computer098",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unable to login")
	})
}

func TestLogoutEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("logout revokes only the presented token", func(t *testing.T) {
		a := newTestAPI(t)
		first := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodPost, "/users/login", "", map[string]interface{}{
			"email":    "young@example.com",
			"password": "computer098",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		var second struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

		require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/users/logout", first.Token, nil).Code)

		assert.Equal(t, http.StatusUnauthorized,
			a.do(t, http.MethodGet, "/users/me", first.Token, nil).Code,
			"the logged-out token must be rejected")
		assert.Equal(t, http.StatusOK,
			a.do(t, http.MethodGet, "/users/me", second.Token, nil).Code,
			"the other device's session must survive")
	})

	t.Run("logoutAll revokes every session", func(t *testing.T) {
		a := newTestAPI(t)
		first := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodPost, "/users/login", "", map[string]interface{}{
			"email":    "young@example.com",
			"password": "computer098",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		var second struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

		require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/users/logoutAll", second.Token, nil).Code)

		assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", first.Token, nil).Code)
		assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", second.Token, nil).Code)
	})
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("unauthenticated reads are rejected", func(t *testing.T) {
		a := newTestAPI(t)

		assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodDelete, "/users/me", "", nil).Code)
	})

	t.Run("profile read excludes credentials", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodGet, "/users/me", resp.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var user map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "young@example.com", user["email"])
		assert.NotContains(t, user, "password")
		assert.NotContains(t, user, "hashed_password")
		assert.NotContains(t, user, "tokens")
	})

	t.Run("allowed fields update and others are preserved", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodPatch, "/users/me", resp.Token, map[string]interface{}{
			"name": "fatih elder",
			"age":  42,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var user map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "fatih elder", user["name"])
		assert.Equal(t, float64(42), user["age"])
		assert.Equal(t, "young@example.com", user["email"])
	})

	t.Run("a disallowed field rejects the whole update", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodPatch, "/users/me", resp.Token, map[string]interface{}{
			"name":   "sneaky",
			"tokens": []string{"forged"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		// Nothing may have been mutated.
		getRec := a.do(t, http.MethodGet, "/users/me", resp.Token, nil)
		require.Equal(t, http.StatusOK, getRec.Code)
		var user map[string]interface{}
		require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &user))
		assert.Equal(t, "fatih young", user["name"])
	})

	t.Run("negative age is rejected", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodPatch, "/users/me", resp.Token, map[string]interface{}{
			"age": -3,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("an updated password becomes the login credential", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		rec := a.do(t, http.MethodPatch, "/users/me", resp.Token, map[string]interface{}{
			"password": "freshsecret",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		loginOld := a.do(t, http.MethodPost, "/users/login", "", map[string]interface{}{
			"email":    "young@example.com",
			"password": "computer098",
		})
		assert.Equal(t, http.StatusBadRequest, loginOld.Code)

		loginNew := a.do(t, http.MethodPost, "/users/login", "", map[string]interface{}{
			"email":    "young@example.com",
			"password": "freshsecret",
		})
		assert.Equal(t, http.StatusOK, loginNew.Code)
	})
}

func TestDeleteAccountEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("deletion removes the user, cascades tasks, and schedules mail", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")
		a.createTask(t, resp.Token, "first task")
		a.createTask(t, resp.Token, "second task")

		other := a.signup(t, "bystander", "bystander@example.com", "computer098")
		keep := a.createTask(t, other.Token, "unrelated task")

		rec := a.do(t, http.MethodDelete, "/users/me", resp.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var user map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "young@example.com", user["email"], "response echoes the deleted profile")

		// The session died with the account.
		assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/users/me", resp.Token, nil).Code)

		// Owned tasks are gone, the bystander's task is not.
		assert.Len(t, a.tasks.Tasks, 1)
		assert.Contains(t, a.tasks.Tasks, keep.ID)

		require.Len(t, a.mail.CancellationCalls, 1)
		assert.Equal(t, "young@example.com", a.mail.CancellationCalls[0].Email)
	})
}

// smallPNG renders a valid in-memory PNG for avatar tests.
func smallPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 15), G: uint8(y * 15), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAvatarEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("upload, public fetch, and delete round trip", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		body, contentType := multipartAvatar(t, "me.png", smallPNG(t))
		rec := a.doRaw(t, http.MethodPost, "/users/me/avatar", resp.Token, contentType, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// The avatar read is public: no Authorization header.
		getRec := a.do(t, http.MethodGet, "/users/"+resp.User.ID.String()+"/avatar", "", nil)
		require.Equal(t, http.StatusOK, getRec.Code)
		assert.Equal(t, "image/png", getRec.Header().Get("Content-Type"))
		assert.NotEmpty(t, getRec.Body.Bytes())

		delRec := a.do(t, http.MethodDelete, "/users/me/avatar", resp.Token, nil)
		require.Equal(t, http.StatusOK, delRec.Code)

		assert.Equal(t, http.StatusNotFound,
			a.do(t, http.MethodGet, "/users/"+resp.User.ID.String()+"/avatar", "", nil).Code)
	})

	t.Run("disallowed extension returns 400", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		body, contentType := multipartAvatar(t, "me.gif", smallPNG(t))
		rec := a.doRaw(t, http.MethodPost, "/users/me/avatar", resp.Token, contentType, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("oversized upload returns 400", func(t *testing.T) {
		a := newTestAPI(t)
		resp := a.signup(t, "fatih young", "young@example.com", "computer098")

		big := bytes.Repeat([]byte{0xAB}, 1<<20+1)
		body, contentType := multipartAvatar(t, "big.png", big)
		rec := a.doRaw(t, http.MethodPost, "/users/me/avatar", resp.Token, contentType, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("avatar of an unknown user returns 404", func(t *testing.T) {
		a := newTestAPI(t)

		rec := a.do(t, http.MethodGet, "/users/7f6a2c4e-8a51-4f6e-9bb1-2f1f62archeo/avatar", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "garbage IDs are a validation failure")

		rec = a.do(t, http.MethodGet, "/users/7f6a2c4e-8a51-4f6e-9bb1-2f1f62aa10ee/avatar", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// Guard against the strict decoder accepting non-object bodies.
func TestUpdateRejectsNonObjectBody(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	resp := a.signup(t, "fatih young", "young@example.com", "computer098")

	rec := a.doRaw(t, http.MethodPatch, "/users/me", resp.Token, "application/json",
		strings.NewReader(`["name"]`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
