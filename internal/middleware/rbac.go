package middleware

import (
	"github.com/gofiber/fiber/v2"

	"projectroom/internal/domain"
	"projectroom/internal/repository"
)

// RequireProjectMember loads the project named by the request and lets the
// request through only if the caller is associated with it: admins always,
// clients and vendors through the project row, everyone else through
// participation. The project is stored for the handler.
func RequireProjectMember(projects repository.ProjectRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetCurrentActor(c)
		if !ok {
			return Unauthorized("User not found")
		}

		projectID := projectIDFromRequest(c)
		if projectID == "" {
			return BadRequest("projectId is required")
		}

		project, err := projects.GetByID(c.Context(), projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return NotFound("Project not found")
		}

		switch actor.Role {
		case domain.RoleAdmin:
		case domain.RoleClient, domain.RoleClientVendor:
			if !project.HasClientSideMember(actor) {
				return Forbidden("You are not associated with this project")
			}
		default:
			member, err := projects.IsParticipant(c.Context(), project.ID, actor.ID)
			if err != nil {
				return err
			}
			if !member {
				return Forbidden("You are not associated with this project")
			}
		}

		c.Locals(ProjectContextKey, project)
		return c.Next()
	}
}

func GetProject(c *fiber.Ctx) *domain.Project {
	project, _ := c.Locals(ProjectContextKey).(*domain.Project)
	return project
}

func projectIDFromRequest(c *fiber.Ctx) string {
	if id := c.Params("projectId"); id != "" {
		return id
	}
	var body struct {
		ProjectID string `json:"projectId" form:"projectId"`
	}
	if err := c.BodyParser(&body); err == nil && body.ProjectID != "" {
		return body.ProjectID
	}
	return c.Query("projectId")
}
