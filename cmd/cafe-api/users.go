package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/httpx"
	"github.com/MikeMC777/cafe/internal/user"
)

type sessionResponse struct {
	Token string    `json:"token"`
	Login string    `json:"login"`
	Role  auth.Role `json:"role"`
}

type profileUpdateResponse struct {
	Updated        bool `json:"updated"`
	ReauthRequired bool `json:"reauth_required"`
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httpx.Error(c, apperr.Validationf("invalid json: %v", err))
		return false
	}
	return true
}

// signUpHandler godoc
// @Summary Create a customer account
// @Tags    users
// @Accept  json
// @Produce json
// @Param   body body user.SignUpRequest true "account"
// @Success 201 {object} user.User
// @Failure 400 {object} menu.HTTPError
// @Router  /users [post]
func signUpHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.SignUpRequest
		if !bindJSON(c, &req) {
			return
		}
		u, err := svc.SignUp(c.Request.Context(), req.Login, req.Password, req.Phone)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// loginHandler godoc
// @Summary Log in and open a session
// @Tags    sessions
// @Accept  json
// @Produce json
// @Param   body body user.LoginRequest true "credentials"
// @Success 201 {object} sessionResponse
// @Failure 401 {object} menu.HTTPError
// @Router  /sessions [post]
func loginHandler(svc *user.Service, store auth.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		sess, err := svc.Authenticate(c.Request.Context(), req.Login, req.Password)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if err := store.Save(c.Request.Context(), sess); err != nil {
			httpx.Error(c, apperr.Database("save session", err))
			return
		}
		c.JSON(http.StatusCreated, sessionResponse{Token: sess.ID.String(), Login: sess.Login, Role: sess.Role})
	}
}

// logoutHandler godoc
// @Summary  Close the current session
// @Tags     sessions
// @Security Session
// @Success  204
// @Router   /sessions [delete]
func logoutHandler(store auth.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := httpx.CurrentSession(c)
		if err := store.Delete(c.Request.Context(), sess.ID); err != nil {
			httpx.Error(c, apperr.Database("delete session", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// getProfileHandler godoc
// @Summary  Own profile
// @Tags     users
// @Security Session
// @Produce  json
// @Success  200 {object} user.User
// @Router   /profile [get]
func getProfileHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := httpx.CurrentSession(c)
		u, err := svc.Get(c.Request.Context(), sess, sess.Login)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// updateSelfHandler godoc
// @Summary     Update own profile
// @Description Phone and password for everyone; login and role for managers. When the change invalidates the session it is closed and reauth_required is true.
// @Tags        users
// @Security    Session
// @Accept      json
// @Produce     json
// @Param       body body user.ProfileUpdate true "fields to change"
// @Success     200 {object} profileUpdateResponse
// @Failure     400 {object} menu.HTTPError
// @Failure     403 {object} menu.HTTPError
// @Router      /profile [patch]
func updateSelfHandler(svc *user.Service, store auth.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.ProfileUpdate
		if !bindJSON(c, &req) {
			return
		}
		sess := httpx.CurrentSession(c)
		reauth, err := svc.UpdateSelf(c.Request.Context(), sess, req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if reauth {
			_ = store.Delete(c.Request.Context(), sess.ID)
		}
		c.JSON(http.StatusOK, profileUpdateResponse{Updated: true, ReauthRequired: reauth})
	}
}

// getUserHandler godoc
// @Summary  A user's profile (self or manager)
// @Tags     users
// @Security Session
// @Produce  json
// @Param    login path string true "login"
// @Success  200 {object} user.User
// @Failure  403 {object} menu.HTTPError
// @Failure  404 {object} menu.HTTPError
// @Router   /users/{login} [get]
func getUserHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), httpx.CurrentSession(c), c.Param("login"))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// updateOtherHandler godoc
// @Summary  Manager edit of another user
// @Tags     users
// @Security Session
// @Accept   json
// @Param    login path string true "login"
// @Param    body body user.ProfileUpdate true "fields to change"
// @Success  204
// @Failure  400 {object} menu.HTTPError
// @Failure  403 {object} menu.HTTPError
// @Failure  404 {object} menu.HTTPError
// @Router   /users/{login} [patch]
func updateOtherHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.ProfileUpdate
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.UpdateOther(c.Request.Context(), httpx.CurrentSession(c), c.Param("login"), req); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// setFavoritesHandler godoc
// @Summary     Replace the favorites list
// @Description An empty list clears it.
// @Tags        users
// @Security    Session
// @Accept      json
// @Param       login path string true "login"
// @Param       body body user.FavoritesRequest true "items"
// @Success     204
// @Failure     400 {object} menu.HTTPError
// @Router      /users/{login}/favorites [put]
func setFavoritesHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.FavoritesRequest
		if !bindJSON(c, &req) {
			return
		}
		sess := httpx.CurrentSession(c)
		var err error
		if len(req.Items) == 0 {
			err = svc.ClearFavorites(c.Request.Context(), sess, c.Param("login"))
		} else {
			err = svc.SetFavorites(c.Request.Context(), sess, c.Param("login"), req.Items)
		}
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// clearFavoritesHandler godoc
// @Summary  Clear the favorites list
// @Tags     users
// @Security Session
// @Param    login path string true "login"
// @Success  204
// @Router   /users/{login}/favorites [delete]
func clearFavoritesHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.ClearFavorites(c.Request.Context(), httpx.CurrentSession(c), c.Param("login")); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
