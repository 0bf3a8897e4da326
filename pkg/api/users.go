package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tagme/pkg/logger"
	"tagme/pkg/models"
	"tagme/pkg/records"
	"tagme/pkg/store"
	"tagme/pkg/token"
	"tagme/pkg/utils"
)

// login exchanges an OAuth code for a verified identity, upserts the
// user record and issues a bearer token in the Authorization response
// header. The code exchange runs before the transaction so a commit
// retry never repeats the outbound call.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ident, err := s.oauth.Exchange(r.Context(), body.Code)
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	uid := records.UserID(ident.ID)

	var info models.UserInfo
	err = store.Update(func(tx *store.Txn) error {
		u, err := records.Get[models.User](tx, uid)
		if err != nil {
			return err
		}
		if u == nil {
			nu := models.NewUser()
			u = &nu
		}
		// re-authentication refreshes the profile; status and the
		// topic list survive it
		u.Data.AccessToken = ident.AccessToken
		u.Data.Login = ident.Login
		u.Data.Name = ident.Name
		u.Data.AvatarURL = ident.AvatarURL
		u.Data.Bio = ident.Bio
		if _, ok := s.bootstrapAdmins[uid]; ok {
			u.Status = models.StatusAdmin
		}
		if err := records.Insert(tx, uid, *u); err != nil {
			return err
		}
		info = u.Info(uid)
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}

	t := token.New(uint64(uid))
	w.Header().Set("Authorization", t.String())
	logger.Info("user_logged_in", "user", uid.String(), "login", ident.Login)
	_ = utils.JSONWrite(w, http.StatusOK, info)
}

// currentUser returns the authenticated caller's own record.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	sub, err := token.Require(r.Context())
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	uid := records.UserID(sub)

	var info models.UserInfo
	err = store.View(func(tx *store.Txn) error {
		u, err := records.GetOrNotFound[models.User](tx, uid)
		if err != nil {
			return err
		}
		info = u.Info(uid)
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, info)
}

// getUser returns any user's public projection.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	uid := records.UserID(id)

	var info models.UserInfo
	verr := store.View(func(tx *store.Txn) error {
		u, err := records.GetOrNotFound[models.User](tx, uid)
		if err != nil {
			return err
		}
		info = u.Info(uid)
		return nil
	})
	if verr != nil {
		utils.JSONDomainError(w, verr)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, info)
}
