package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tagme/pkg/errs"
	"tagme/pkg/logger"
	"tagme/pkg/models"
	"tagme/pkg/records"
	"tagme/pkg/store"
	"tagme/pkg/token"
	"tagme/pkg/utils"
)

// setUserStatus promotes, demotes or bans a user. The status is a
// classification over the profile data; the data itself is never
// touched and users are never deleted.
func (s *Server) setUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	target := records.UserID(id)

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	var status models.Status
	switch models.Status(body.Status) {
	case models.StatusNormal, models.StatusAdmin, models.StatusBanned:
		status = models.Status(body.Status)
	default:
		utils.JSONError(w, http.StatusBadRequest, "unknown status")
		return
	}

	sub, err := token.Require(r.Context())
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	callerID := records.UserID(sub)

	var info models.UserInfo
	err = store.Update(func(tx *store.Txn) error {
		caller, err := records.GetOrNotFound[models.User](tx, callerID)
		if err != nil {
			return err
		}
		if err := caller.Active(); err != nil {
			return err
		}
		if !caller.IsAdmin() {
			return errs.Forbidden("admin required")
		}
		u, err := records.GetOrNotFound[models.User](tx, target)
		if err != nil {
			return err
		}
		u.Status = status
		if err := records.Insert(tx, target, *u); err != nil {
			return err
		}
		info = u.Info(target)
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	logger.Info("user_status_changed", "user", target.String(), "status", string(status), "by", callerID.String())
	_ = utils.JSONWrite(w, http.StatusOK, info)
}
