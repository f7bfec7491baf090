package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/model"
	"github.com/statutecheck/statutecheck/internal/store"
)

// HomeHandler returns the public search data: states with at least one
// live statute
func HomeHandler(stateStore *store.StateStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		states, err := stateStore.GetWithStatutes(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading states"})
		}

		out := make([]fiber.Map, 0, len(states))
		for _, s := range states {
			out = append(out, fiber.Map{"name": s.Name, "slug": s.Slug})
		}
		return c.JSON(fiber.Map{"states": out})
	}
}

// stateFinder resolves a public state slug
type stateFinder interface {
	GetBySlug(ctx context.Context, slug string) (*model.State, error)
}

// stateIssueLister lists the issues with a live statute for a state
type stateIssueLister interface {
	GetByStateSlug(ctx context.Context, stateSlug string) ([]model.Issue, error)
}

// IssuesByStateHandler returns the issues that have a live statute for
// a state; an unknown state slug is a 404, not an empty list
func IssuesByStateHandler(stateStore stateFinder, issueStore stateIssueLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stateSlug := c.Params("state")

		state, err := stateStore.GetBySlug(c.Context(), stateSlug)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading state"})
		}
		if state == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown state"})
		}

		issues, err := issueStore.GetByStateSlug(c.Context(), stateSlug)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading issues"})
		}

		out := make([]fiber.Map, 0, len(issues))
		for _, i := range issues {
			out = append(out, fiber.Map{
				"id":          i.ID,
				"name":        i.Name,
				"slug":        i.Slug,
				"issue_group": nullableString(i.IssueGroup),
			})
		}
		return c.JSON(fiber.Map{"state": state.Name, "issues": out})
	}
}

// StatuteDetailHandler returns the public lookup payload for a
// state/issue combination; 404 when the pair has no live statute
func StatuteDetailHandler(statuteStore *store.StatuteStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stateSlug := c.Params("state")
		issueSlug := c.Params("issue")

		detail, err := statuteStore.GetDetail(c.Context(), stateSlug, issueSlug)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading statute"})
		}
		if detail == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No statute for this state and issue"})
		}

		return c.JSON(fiber.Map{
			"state_name":            detail.StateName,
			"state_code":            detail.StateCode,
			"issue_name":            detail.IssueName,
			"issue_group":           nullableString(detail.IssueGroup),
			"issue_description":     nullableString(detail.IssueDesc),
			"small_claims_cap":      nullableFloat(detail.SmallClaimsCap),
			"small_claims_info":     nullableString(detail.SmallClaimsInfo),
			"issue_info":            nullableString(detail.IssueInfo),
			"time_limit_type":       detail.TimeLimitType,
			"time_limit_min":        detail.TimeLimitMin,
			"time_limit_max":        detail.TimeLimitMax,
			"duration":              detail.Duration,
			"details":               nullableString(detail.Details),
			"conditions_exceptions": nullableString(detail.ConditionsExceptions),
			"examples":              nullableString(detail.Examples),
			"code_reference":        nullableString(detail.CodeReference),
			"official_source_url":   nullableString(detail.OfficialSourceURL),
			"other_source_url":      nullableString(detail.OtherSourceURL),
			"tolling":               nullableString(detail.Tolling),
			"updated_at":            detail.UpdatedAt,
		})
	}
}

// ReportIssueHandler stores a data-correction report from the public site
func ReportIssueHandler(reportStore *store.ReportStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Details        string `json:"details"`
			Email          string `json:"email"`
			OfficialSource string `json:"official_source"`
			URL            string `json:"url"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body."})
		}
		if strings.TrimSpace(body.Details) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Correction details are required."})
		}

		report := &model.IssueReport{
			Details:        body.Details,
			ReporterEmail:  optionalString(body.Email),
			OfficialSource: optionalString(body.OfficialSource),
			PageContext:    optionalString(body.URL),
		}
		if err := reportStore.Create(c.Context(), report); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to save report."})
		}

		return c.JSON(fiber.Map{"status": "success", "message": "Thank you. Your correction has been submitted for review."})
	}
}

// SitemapHandler emits the sitemap of all live state/issue pages
func SitemapHandler(statuteStore *store.StatuteStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := statuteStore.GetSitemapEntries(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error building sitemap")
		}

		baseURL := c.BaseURL()
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
		b.WriteString("\n<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n")
		for _, e := range entries {
			b.WriteString("  <url>\n")
			fmt.Fprintf(&b, "    <loc>%s/limitations/%s/%s</loc>\n", baseURL, e.StateSlug, e.IssueSlug)
			if e.UpdatedAt.Valid {
				fmt.Fprintf(&b, "    <lastmod>%s</lastmod>\n", e.UpdatedAt.Time.Format("2006-01-02"))
			}
			b.WriteString("  </url>\n")
		}
		b.WriteString("</urlset>\n")

		c.Set(fiber.HeaderContentType, "application/xml")
		return c.SendString(b.String())
	}
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullableFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}

func optionalString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: strings.TrimSpace(s) != ""}
}
