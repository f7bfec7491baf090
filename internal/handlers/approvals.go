package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/model"
	"github.com/statutecheck/statutecheck/internal/service"
	"github.com/statutecheck/statutecheck/internal/store"
)

const approvalsPerPage = 10

// PendingSmallClaimsHandler lists PENDING small-claims approvals,
// searchable by state name
func PendingSmallClaimsHandler(approvalStore *store.ApprovalStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceApprovals, auth.ActionRead) {
			return accessDenied(c)
		}

		page, limit, offset := pageParams(c, approvalsPerPage)
		search := c.Query("search")

		approvals, total, err := approvalStore.ListPendingSmallClaims(c.Context(), search, limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading approvals"})
		}

		return c.JSON(fiber.Map{
			"approvals":   smallClaimsApprovalsJSON(approvals),
			"page":        page,
			"total_pages": totalPages(total, approvalsPerPage),
			"search":      search,
		})
	}
}

// SmallClaimsApprovalViewHandler pairs one queue row with the current
// live record, if any, for reviewer comparison
func SmallClaimsApprovalViewHandler(approvalStore *store.ApprovalStore, claimsStore *store.SmallClaimsStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceApprovals, auth.ActionRead) {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid approval id"})
		}

		approval, err := approvalStore.GetSmallClaimsApproval(c.Context(), id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading approval"})
		}
		if approval == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Approval request not found"})
		}

		var current *model.SmallClaim
		if approval.ClaimID.Valid {
			current, err = claimsStore.GetByID(c.Context(), int(approval.ClaimID.Int64))
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading current record"})
			}
		}

		resp := fiber.Map{"approval": smallClaimsApprovalJSON(*approval)}
		if current != nil {
			resp["current_record"] = fiber.Map{
				"id":         current.ID,
				"state_id":   current.StateID,
				"cap":        nullableFloat(current.Cap),
				"info":       nullableString(current.Info),
				"updated_by": current.UpdatedBy,
				"updated_at": current.UpdatedAt,
			}
		}
		return c.JSON(resp)
	}
}

// ApproveSmallClaimsHandler applies one pending small-claims change
func ApproveSmallClaimsHandler(queue *service.ChangeQueue) fiber.Handler {
	return decideHandler(func(c *fiber.Ctx, actor auth.Actor, id int) error {
		return queue.ApproveSmallClaims(c.Context(), actor, id)
	}, "Change approved")
}

// RejectSmallClaimsHandler rejects one pending small-claims change
func RejectSmallClaimsHandler(queue *service.ChangeQueue) fiber.Handler {
	return decideHandler(func(c *fiber.Ctx, actor auth.Actor, id int) error {
		return queue.RejectSmallClaims(c.Context(), actor, id)
	}, "Change request rejected")
}

// PendingStatutesHandler lists PENDING statute approvals, searchable by
// state or issue name
func PendingStatutesHandler(approvalStore *store.ApprovalStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceApprovals, auth.ActionRead) {
			return accessDenied(c)
		}

		page, limit, offset := pageParams(c, approvalsPerPage)
		search := c.Query("search")

		approvals, total, err := approvalStore.ListPendingStatutes(c.Context(), search, limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading approvals"})
		}

		return c.JSON(fiber.Map{
			"approvals":   statuteApprovalsJSON(approvals),
			"page":        page,
			"total_pages": totalPages(total, approvalsPerPage),
			"search":      search,
		})
	}
}

// StatuteApprovalViewHandler pairs one queue row with the current live
// statute, if any, for reviewer comparison
func StatuteApprovalViewHandler(approvalStore *store.ApprovalStore, statuteStore *store.StatuteStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceApprovals, auth.ActionRead) {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid approval id"})
		}

		approval, err := approvalStore.GetStatuteApproval(c.Context(), id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading approval"})
		}
		if approval == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Approval request not found"})
		}

		var current *model.Statute
		if approval.StatuteID.Valid {
			current, err = statuteStore.GetByID(c.Context(), int(approval.StatuteID.Int64))
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading current record"})
			}
		}

		resp := fiber.Map{"approval": statuteApprovalJSON(*approval)}
		if current != nil {
			resp["current_record"] = statuteJSON(*current)
		}
		return c.JSON(resp)
	}
}

// ApproveStatuteHandler applies one pending statute change
func ApproveStatuteHandler(queue *service.ChangeQueue) fiber.Handler {
	return decideHandler(func(c *fiber.Ctx, actor auth.Actor, id int) error {
		return queue.ApproveStatute(c.Context(), actor, id)
	}, "Statute change approved")
}

// RejectStatuteHandler rejects one pending statute change
func RejectStatuteHandler(queue *service.ChangeQueue) fiber.Handler {
	return decideHandler(func(c *fiber.Ctx, actor auth.Actor, id int) error {
		return queue.RejectStatute(c.Context(), actor, id)
	}, "Statute change request rejected")
}

func decideHandler(decide func(c *fiber.Ctx, actor auth.Actor, id int) error, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid approval id"})
		}

		if err := decide(c, actor, id); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": message})
	}
}

func smallClaimsApprovalJSON(a model.SmallClaimsApproval) fiber.Map {
	m := fiber.Map{
		"id":           a.ID,
		"state_id":     a.StateID,
		"state_name":   a.StateName,
		"cap":          nullableFloat(a.Cap),
		"info":         nullableString(a.Info),
		"action_type":  a.ActionType,
		"status":       a.Status,
		"submitted_by": a.SubmittedBy,
		"submitted_at": a.SubmittedAt,
	}
	if a.ClaimID.Valid {
		m["claim_id"] = a.ClaimID.Int64
	}
	return m
}

func smallClaimsApprovalsJSON(approvals []model.SmallClaimsApproval) []fiber.Map {
	out := make([]fiber.Map, 0, len(approvals))
	for _, a := range approvals {
		out = append(out, smallClaimsApprovalJSON(a))
	}
	return out
}

func statuteApprovalJSON(a model.StatuteApproval) fiber.Map {
	m := fiber.Map{
		"id":                    a.ID,
		"state_id":              a.StateID,
		"issue_id":              a.IssueID,
		"state_name":            a.StateName,
		"issue_name":            a.IssueName,
		"issue_info":            nullableString(a.IssueInfo),
		"time_limit_type":       nullableString(a.TimeLimitType),
		"time_limit_min":        nullableFloat(a.TimeLimitMin),
		"time_limit_max":        nullableFloat(a.TimeLimitMax),
		"duration":              nullableString(a.Duration),
		"details":               nullableString(a.Details),
		"code_reference":        nullableString(a.CodeReference),
		"official_source_url":   nullableString(a.OfficialSourceURL),
		"other_source_url":      nullableString(a.OtherSourceURL),
		"conditions_exceptions": nullableString(a.ConditionsExceptions),
		"examples":              nullableString(a.Examples),
		"tolling":               nullableString(a.Tolling),
		"action_type":           a.ActionType,
		"status":                a.Status,
		"submitted_by":          a.SubmittedBy,
		"submitted_at":          a.SubmittedAt,
	}
	if a.StatuteID.Valid {
		m["statute_id"] = a.StatuteID.Int64
	}
	return m
}

func statuteApprovalsJSON(approvals []model.StatuteApproval) []fiber.Map {
	out := make([]fiber.Map, 0, len(approvals))
	for _, a := range approvals {
		out = append(out, statuteApprovalJSON(a))
	}
	return out
}

func statuteJSON(s model.Statute) fiber.Map {
	return fiber.Map{
		"id":                    s.ID,
		"state_id":              s.StateID,
		"issue_id":              s.IssueID,
		"issue_info":            nullableString(s.IssueInfo),
		"time_limit_type":       s.TimeLimitType,
		"time_limit_min":        s.TimeLimitMin,
		"time_limit_max":        s.TimeLimitMax,
		"duration":              s.Duration,
		"details":               nullableString(s.Details),
		"code_reference":        nullableString(s.CodeReference),
		"official_source_url":   nullableString(s.OfficialSourceURL),
		"other_source_url":      nullableString(s.OtherSourceURL),
		"conditions_exceptions": nullableString(s.ConditionsExceptions),
		"examples":              nullableString(s.Examples),
		"tolling":               nullableString(s.Tolling),
		"updated_by":            s.UpdatedBy,
		"updated_at":            s.UpdatedAt,
	}
}
