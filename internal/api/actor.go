package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/pranavdl/campus-transport/internal/model"
)

// Actor identity headers. They are asserted by the auth gateway in front of
// this service; the core trusts them as-is (spec of the deployment, not of
// this process).
const (
	headerActorID         = "X-Actor-Id"
	headerActorRole       = "X-Actor-Role"
	headerActorDepartment = "X-Actor-Department"
)

var validRoles = map[model.Role]bool{
	model.RoleRequester: true,
	model.RoleHOD:       true,
	model.RoleAdmin:     true,
	model.RoleDriver:    true,
}

// actorFrom builds the session actor from the request headers.
func actorFrom(r *http.Request) (model.Actor, error) {
	rawID := r.Header.Get(headerActorID)
	if rawID == "" {
		return model.Actor{}, fmt.Errorf("missing %s header", headerActorID)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return model.Actor{}, fmt.Errorf("invalid %s header: %w", headerActorID, err)
	}

	role := model.Role(r.Header.Get(headerActorRole))
	if !validRoles[role] {
		return model.Actor{}, fmt.Errorf("invalid %s header %q", headerActorRole, role)
	}

	return model.Actor{
		ID:         id,
		Role:       role,
		Department: r.Header.Get(headerActorDepartment),
	}, nil
}
