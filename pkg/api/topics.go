package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"tagme/pkg/errs"
	"tagme/pkg/logger"
	"tagme/pkg/models"
	"tagme/pkg/records"
	"tagme/pkg/store"
	"tagme/pkg/token"
	"tagme/pkg/utils"
	"tagme/pkg/validation"
)

// listTop returns the global ordered list of topic names. The list is
// implicitly empty when it has never been written.
func (s *Server) listTop(w http.ResponseWriter, r *http.Request) {
	var top models.Top
	err := store.View(func(tx *store.Txn) error {
		t, err := records.Get[models.Top](tx, records.TopKey{})
		if err != nil {
			return err
		}
		if t != nil {
			top = *t
		}
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	if top == nil {
		top = models.Top{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Topics models.Top `json:"topics"`
	}{Topics: top})
}

func (s *Server) getTopic(w http.ResponseWriter, r *http.Request) {
	name := records.TopicName(mux.Vars(r)["name"])

	var view topicView
	err := store.View(func(tx *store.Txn) error {
		t, err := records.GetOrNotFound[models.Topic](tx, name)
		if err != nil {
			return err
		}
		view = viewTopic(name, t)
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, view)
}

// createTopic creates a topic and atomically threads its name into the
// author's topic list and the global top list.
func (s *Server) createTopic(w http.ResponseWriter, r *http.Request) {
	name := records.TopicName(mux.Vars(r)["name"])
	if err := validation.TopicName(string(name)); err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	var body struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sub, err := token.Require(r.Context())
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	uid := records.UserID(sub)

	var view topicView
	err = store.Update(func(tx *store.Txn) error {
		caller, err := records.GetOrNotFound[models.User](tx, uid)
		if err != nil {
			return err
		}
		if err := caller.Active(); err != nil {
			return err
		}
		existing, err := records.Get[models.Topic](tx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return errs.Conflict("topic already exists")
		}

		topic := models.NewTopic(uid, body.Description)
		if err := records.Insert(tx, name, topic); err != nil {
			return err
		}

		caller.Data.Topics = append(caller.Data.Topics, name)
		if err := records.Insert(tx, uid, *caller); err != nil {
			return err
		}

		top, err := records.Get[models.Top](tx, records.TopKey{})
		if err != nil {
			return err
		}
		var list models.Top
		if top != nil {
			list = *top
		}
		if err := records.Insert(tx, records.TopKey{}, list.Add(name)); err != nil {
			return err
		}

		view = viewTopic(name, &topic)
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	logger.Info("topic_created", "topic", string(name), "author", uid.String())
	_ = utils.JSONWrite(w, http.StatusCreated, view)
}

// updateTopic replaces the description. Only the author or an admin
// may do this.
func (s *Server) updateTopic(w http.ResponseWriter, r *http.Request) {
	name := records.TopicName(mux.Vars(r)["name"])
	var body struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sub, err := token.Require(r.Context())
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	uid := records.UserID(sub)

	var view topicView
	err = store.Update(func(tx *store.Txn) error {
		topic, err := records.GetOrNotFound[models.Topic](tx, name)
		if err != nil {
			return err
		}
		caller, err := records.GetOrNotFound[models.User](tx, uid)
		if err != nil {
			return err
		}
		if err := caller.Verified(uid, topic.Author); err != nil {
			return err
		}
		topic.Description = body.Description
		if err := records.Insert(tx, name, *topic); err != nil {
			return err
		}
		view = viewTopic(name, topic)
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, view)
}

// deleteTopic removes the topic record, its entry in the global top
// list and its entry in the author's topic list, all in one
// transaction.
func (s *Server) deleteTopic(w http.ResponseWriter, r *http.Request) {
	name := records.TopicName(mux.Vars(r)["name"])
	sub, err := token.Require(r.Context())
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	uid := records.UserID(sub)

	err = store.Update(func(tx *store.Txn) error {
		topic, err := records.GetOrNotFound[models.Topic](tx, name)
		if err != nil {
			return err
		}
		caller, err := records.GetOrNotFound[models.User](tx, uid)
		if err != nil {
			return err
		}
		if err := caller.Verified(uid, topic.Author); err != nil {
			return err
		}

		records.Remove[models.Topic](tx, name)

		// the author's topic list loses the entry even when an admin
		// deletes on their behalf
		author := caller
		if topic.Author != uid {
			author, err = records.Get[models.User](tx, topic.Author)
			if err != nil {
				return err
			}
		}
		if author != nil {
			author.Data.RemoveTopic(name)
			if err := records.Insert(tx, topic.Author, *author); err != nil {
				return err
			}
		}

		top, err := records.Get[models.Top](tx, records.TopKey{})
		if err != nil {
			return err
		}
		if top != nil {
			if err := records.Insert(tx, records.TopKey{}, top.Remove(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	logger.Info("topic_deleted", "topic", string(name), "by", uid.String())
	w.WriteHeader(http.StatusNoContent)
}

// addTag endorses a tag on a topic. Existing tags gain one count; new
// tags either enter the tag map directly (author or admin) or park in
// the pending set.
func (s *Server) addTag(w http.ResponseWriter, r *http.Request) {
	name := records.TopicName(mux.Vars(r)["name"])
	var body struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.Tag(body.Tag); err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	sub, err := token.Require(r.Context())
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	uid := records.UserID(sub)

	var view topicView
	err = store.Update(func(tx *store.Txn) error {
		topic, err := records.GetOrNotFound[models.Topic](tx, name)
		if err != nil {
			return err
		}
		caller, err := records.GetOrNotFound[models.User](tx, uid)
		if err != nil {
			return err
		}
		if err := caller.Active(); err != nil {
			return err
		}
		curator := caller.Verified(uid, topic.Author) == nil
		topic.Endorse(body.Tag, curator)
		if err := records.Insert(tx, name, *topic); err != nil {
			return err
		}
		view = viewTopic(name, topic)
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, view)
}

// removeTag deletes a tag (endorsed or pending). Author or admin only.
func (s *Server) removeTag(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := records.TopicName(vars["name"])
	tag := vars["tag"]
	sub, err := token.Require(r.Context())
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	uid := records.UserID(sub)

	var view topicView
	err = store.Update(func(tx *store.Txn) error {
		topic, err := records.GetOrNotFound[models.Topic](tx, name)
		if err != nil {
			return err
		}
		caller, err := records.GetOrNotFound[models.User](tx, uid)
		if err != nil {
			return err
		}
		if err := caller.Verified(uid, topic.Author); err != nil {
			return err
		}
		topic.RemoveTag(tag)
		if err := records.Insert(tx, name, *topic); err != nil {
			return err
		}
		view = viewTopic(name, topic)
		return nil
	})
	if err != nil {
		utils.JSONDomainError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, view)
}
