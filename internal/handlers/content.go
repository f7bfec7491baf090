package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/model"
	"github.com/statutecheck/statutecheck/internal/service"
	"github.com/statutecheck/statutecheck/internal/store"
)

const (
	issuesPerPage      = 10
	smallClaimsPerPage = 10
	statutesPerPage    = 15
)

// --- Issues (lookup table, direct CRUD — not queue-gated) ---

// IssuesListHandler lists issue categories, searchable by name
func IssuesListHandler(issueStore *store.IssueStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceIssues, auth.ActionRead) {
			return accessDenied(c)
		}

		page, limit, offset := pageParams(c, issuesPerPage)
		search := c.Query("search")

		issues, total, err := issueStore.List(c.Context(), search, limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading issues"})
		}

		out := make([]fiber.Map, 0, len(issues))
		for _, i := range issues {
			out = append(out, fiber.Map{
				"id":          i.ID,
				"name":        i.Name,
				"slug":        i.Slug,
				"description": nullableString(i.Description),
				"issue_group": nullableString(i.IssueGroup),
				"updated_by":  nullableString(i.UpdatedBy),
				"updated_at":  i.UpdatedAt,
			})
		}

		return c.JSON(fiber.Map{
			"issues":      out,
			"page":        page,
			"total_pages": totalPages(total, issuesPerPage),
			"search":      search,
		})
	}
}

type issueBody struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IssueGroup  string `json:"issue_group"`
}

// IssueCreateHandler adds a new issue category
func IssueCreateHandler(issueStore *store.IssueStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceIssues, auth.ActionCreate) {
			return accessDenied(c)
		}

		var body issueBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Slug) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name and slug are required"})
		}

		taken, err := issueStore.SlugTaken(c.Context(), body.Slug, 0)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error checking slug"})
		}
		if taken {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Slug must be unique"})
		}

		issue := &model.Issue{
			Name:        body.Name,
			Slug:        body.Slug,
			Description: optionalString(body.Description),
			IssueGroup:  optionalString(body.IssueGroup),
		}
		if err := issueStore.Create(c.Context(), issue, actor.Username); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add issue"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": issue.ID, "message": "Issue category added"})
	}
}

// IssueUpdateHandler edits an issue category
func IssueUpdateHandler(issueStore *store.IssueStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceIssues, auth.ActionUpdate) {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid issue id"})
		}

		var body issueBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		existing, err := issueStore.GetByID(c.Context(), id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading issue"})
		}
		if existing == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Issue not found"})
		}

		taken, err := issueStore.SlugTaken(c.Context(), body.Slug, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error checking slug"})
		}
		if taken {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Slug is already taken by another issue"})
		}

		issue := &model.Issue{
			ID:          id,
			Name:        body.Name,
			Slug:        body.Slug,
			Description: optionalString(body.Description),
			IssueGroup:  optionalString(body.IssueGroup),
		}
		if err := issueStore.Update(c.Context(), issue, actor.Username); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update issue"})
		}

		return c.JSON(fiber.Map{"message": "Issue updated successfully"})
	}
}

// IssueDeleteHandler removes an issue category; fails when statutes
// still reference it
func IssueDeleteHandler(issueStore *store.IssueStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceIssues, auth.ActionDelete) {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid issue id"})
		}

		if err := issueStore.Delete(c.Context(), id); err != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot delete issue: it may be linked to existing statutes"})
		}
		return c.JSON(fiber.Map{"message": "Issue deleted"})
	}
}

// --- Small claims (queue-gated) ---

// SmallClaimsListHandler lists live small-claims rows, searchable by state
func SmallClaimsListHandler(claimsStore *store.SmallClaimsStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceSmallClaims, auth.ActionRead) {
			return accessDenied(c)
		}

		page, limit, offset := pageParams(c, smallClaimsPerPage)
		search := c.Query("search")

		claims, total, err := claimsStore.List(c.Context(), search, limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading small claims"})
		}

		out := make([]fiber.Map, 0, len(claims))
		for _, cl := range claims {
			out = append(out, fiber.Map{
				"id":         cl.ID,
				"state_id":   cl.StateID,
				"state_name": cl.StateName,
				"cap":        nullableFloat(cl.Cap),
				"info":       nullableString(cl.Info),
				"updated_by": cl.UpdatedBy,
				"updated_at": cl.UpdatedAt,
			})
		}

		return c.JSON(fiber.Map{
			"claims":      out,
			"page":        page,
			"total_pages": totalPages(total, smallClaimsPerPage),
			"search":      search,
		})
	}
}

type smallClaimsBody struct {
	StateID int      `json:"state_id"`
	Cap     *float64 `json:"cap"`
	Info    string   `json:"info"`
}

func (b smallClaimsBody) payload() service.SmallClaimsPayload {
	p := service.SmallClaimsPayload{
		StateID: b.StateID,
		Info:    optionalString(b.Info),
	}
	if b.Cap != nil {
		p.Cap.Float64 = *b.Cap
		p.Cap.Valid = true
	}
	return p
}

// SmallClaimsCreateHandler stages a new small-claims record for approval
func SmallClaimsCreateHandler(queue *service.ChangeQueue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok {
			return accessDenied(c)
		}

		var body smallClaimsBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if body.StateID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "State is required"})
		}

		approval, err := queue.SubmitSmallClaimsInsert(c.Context(), actor, body.payload())
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"approval_id": approval.ID, "message": "Change submitted for approval"})
	}
}

// SmallClaimsUpdateHandler stages a replacement of a small-claims record
func SmallClaimsUpdateHandler(queue *service.ChangeQueue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid record id"})
		}

		var body smallClaimsBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		approval, err := queue.SubmitSmallClaimsUpdate(c.Context(), actor, id, body.payload())
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"approval_id": approval.ID, "message": "Update submitted for approval"})
	}
}

// SmallClaimsDeleteHandler stages removal of a small-claims record
func SmallClaimsDeleteHandler(queue *service.ChangeQueue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid record id"})
		}

		approval, err := queue.SubmitSmallClaimsDelete(c.Context(), actor, id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"approval_id": approval.ID, "message": "Deletion request submitted for approval"})
	}
}

// --- Statutes (queue-gated) ---

// StatutesListHandler lists live statutes with name search and
// state/issue filters
func StatutesListHandler(statuteStore *store.StatuteStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceStatutes, auth.ActionRead) {
			return accessDenied(c)
		}

		page, limit, offset := pageParams(c, statutesPerPage)
		search := c.Query("search")
		stateFilter := c.QueryInt("state_filter", 0)
		issueFilter := c.QueryInt("issue_filter", 0)

		statutes, total, err := statuteStore.List(c.Context(), search, stateFilter, issueFilter, limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading statutes"})
		}

		out := make([]fiber.Map, 0, len(statutes))
		for _, s := range statutes {
			m := statuteJSON(s.Statute)
			m["state_name"] = s.StateName
			m["issue_name"] = s.IssueName
			out = append(out, m)
		}

		return c.JSON(fiber.Map{
			"statutes":    out,
			"page":        page,
			"total_pages": totalPages(total, statutesPerPage),
			"search":      search,
		})
	}
}

type statuteBody struct {
	StateID              int     `json:"state_id"`
	IssueID              int     `json:"issue_id"`
	IssueInfo            string  `json:"issue_info"`
	TimeLimitType        string  `json:"time_limit_type"`
	TimeLimitMin         float64 `json:"time_limit_min"`
	TimeLimitMax         float64 `json:"time_limit_max"`
	Duration             string  `json:"duration"`
	Details              string  `json:"details"`
	CodeReference        string  `json:"code_reference"`
	OfficialSourceURL    string  `json:"official_source_url"`
	OtherSourceURL       string  `json:"other_source_url"`
	ConditionsExceptions string  `json:"conditions_exceptions"`
	Examples             string  `json:"examples"`
	Tolling              string  `json:"tolling"`
}

func (b statuteBody) payload() service.StatutePayload {
	minVal, maxVal := b.TimeLimitMin, b.TimeLimitMax
	// Exact limits historically arrive with the single value in the max
	// field; carry it into min so normalization applies it to both bounds
	if strings.EqualFold(b.TimeLimitType, string(model.TimeLimitExact)) && minVal == 0 {
		minVal = maxVal
	}

	return service.StatutePayload{
		StateID:              b.StateID,
		IssueID:              b.IssueID,
		IssueInfo:            optionalString(b.IssueInfo),
		TimeLimitType:        model.TimeLimitType(strings.ToLower(b.TimeLimitType)),
		TimeLimitMin:         minVal,
		TimeLimitMax:         maxVal,
		Duration:             model.DurationUnit(strings.ToLower(b.Duration)),
		Details:              optionalString(b.Details),
		CodeReference:        optionalString(b.CodeReference),
		OfficialSourceURL:    optionalString(b.OfficialSourceURL),
		OtherSourceURL:       optionalString(b.OtherSourceURL),
		ConditionsExceptions: optionalString(b.ConditionsExceptions),
		Examples:             optionalString(b.Examples),
		Tolling:              optionalString(b.Tolling),
	}
}

// StatuteCreateHandler stages a new statute for approval
func StatuteCreateHandler(queue *service.ChangeQueue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok {
			return accessDenied(c)
		}

		var body statuteBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if body.StateID == 0 || body.IssueID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "State, issue, and time limit are required"})
		}

		approval, err := queue.SubmitStatuteInsert(c.Context(), actor, body.payload())
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"approval_id": approval.ID, "message": "Statute creation submitted for approval"})
	}
}

// StatuteUpdateHandler stages a replacement of a statute
func StatuteUpdateHandler(queue *service.ChangeQueue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid statute id"})
		}

		var body statuteBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		approval, err := queue.SubmitStatuteUpdate(c.Context(), actor, id, body.payload())
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"approval_id": approval.ID, "message": "Statute update submitted for approval"})
	}
}

// StatuteDeleteHandler stages removal of a statute
func StatuteDeleteHandler(queue *service.ChangeQueue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid statute id"})
		}

		approval, err := queue.SubmitStatuteDelete(c.Context(), actor, id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"approval_id": approval.ID, "message": "Statute deletion request submitted for approval"})
	}
}
