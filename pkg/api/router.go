// Package api exposes the HTTP surface of the tag-voting service. All
// record mutation goes through one store transaction per request, so a
// crash or concurrent writer can never observe a half-updated state.
package api

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"tagme/pkg/models"
	"tagme/pkg/oauth"
	"tagme/pkg/records"
)

// Server carries the handler dependencies.
type Server struct {
	oauth           *oauth.Client
	bootstrapAdmins map[records.UserID]struct{}
}

// New returns a Server. bootstrapAdmins lists external ids promoted to
// admin on login.
func New(oc *oauth.Client, bootstrapAdmins []uint64) *Server {
	admins := make(map[records.UserID]struct{}, len(bootstrapAdmins))
	for _, id := range bootstrapAdmins {
		admins[records.UserID(id)] = struct{}{}
	}
	return &Server{oauth: oc, bootstrapAdmins: admins}
}

// Router registers all routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/v1/auth/github", s.login).Methods(http.MethodPost)

	r.HandleFunc("/v1/users/me", s.currentUser).Methods(http.MethodGet)
	r.HandleFunc("/v1/users/{id}", s.getUser).Methods(http.MethodGet)

	r.HandleFunc("/v1/topics", s.listTop).Methods(http.MethodGet)
	r.HandleFunc("/v1/topics/{name}", s.getTopic).Methods(http.MethodGet)
	r.HandleFunc("/v1/topics/{name}", s.createTopic).Methods(http.MethodPost)
	r.HandleFunc("/v1/topics/{name}", s.updateTopic).Methods(http.MethodPut)
	r.HandleFunc("/v1/topics/{name}", s.deleteTopic).Methods(http.MethodDelete)

	r.HandleFunc("/v1/topics/{name}/tags", s.addTag).Methods(http.MethodPost)
	r.HandleFunc("/v1/topics/{name}/tags/{tag}", s.removeTag).Methods(http.MethodDelete)

	r.HandleFunc("/v1/admin/users/{id}/status", s.setUserStatus).Methods(http.MethodPut)

	return r
}

// topicView is the response shape for topic reads and mutations.
type topicView struct {
	Name        string            `json:"name"`
	Author      string            `json:"author"`
	Description string            `json:"description"`
	Tags        map[string]uint32 `json:"tags"`
	PendingTags []string          `json:"pending_tags"`
}

func viewTopic(name records.TopicName, t *models.Topic) topicView {
	pending := make([]string, 0, len(t.PendingTags))
	for tag := range t.PendingTags {
		pending = append(pending, tag)
	}
	sort.Strings(pending)
	tags := t.Tags
	if tags == nil {
		tags = map[string]uint32{}
	}
	return topicView{
		Name:        string(name),
		Author:      t.Author.String(),
		Description: t.Description,
		Tags:        tags,
		PendingTags: pending,
	}
}
