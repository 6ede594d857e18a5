// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/ai"
	"pagecraft/internal/content"
	"pagecraft/internal/models"
)

// DefaultTimeout bounds one generator call when none is configured.
const DefaultTimeout = 60 * time.Second

// OverwriteFlag is the request field that confirms a destructive run.
const OverwriteFlag = content.OverwriteFlag

// Status is the outcome of one regeneration request.
type Status string

const (
	StatusOK                   Status = "ok"
	StatusConfirmationRequired Status = "confirmation_required"
	StatusFailed               Status = "failed"
)

// Target is the part of the content service the pipeline writes through.
type Target interface {
	GetPage(ctx context.Context, id uuid.UUID) (*models.Page, error)
	ApplyGenerated(ctx context.Context, pageID uuid.UUID, g content.Generated, attempt models.AiGenerationLog, overwrite bool) (*models.Page, error)
	RecordGenerationAttempt(ctx context.Context, attempt models.AiGenerationLog) error
}

// PromptChecker screens the free-text request parameters before any
// generator sees them. *ai.Registry implements it.
type PromptChecker interface {
	CheckPrompt(ctx context.Context, text string) (*ai.ModerationResult, error)
}

// Job is one regeneration request. It is also the queued payload.
type Job struct {
	PageID    uuid.UUID `json:"page_id"`
	Model     string    `json:"model"`
	Params    Params    `json:"params"`
	Overwrite bool      `json:"overwrite"`
}

// Result reports how a request ended. Page is set only for StatusOK.
type Result struct {
	Status Status       `json:"status"`
	Page   *models.Page `json:"page,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// Pipeline runs regeneration attempts.
type Pipeline struct {
	target       Target
	generators   *Generators
	defaultModel string
	timeout      time.Duration
	moderator    PromptChecker
}

// NewPipeline creates a pipeline. An empty defaultModel selects the
// offline generator; a non-positive timeout selects DefaultTimeout.
func NewPipeline(target Target, generators *Generators, defaultModel string, timeout time.Duration) *Pipeline {
	if defaultModel == "" {
		defaultModel = OfflineModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{
		target:       target,
		generators:   generators,
		defaultModel: defaultModel,
		timeout:      timeout,
	}
}

// SetModerator enables prompt moderation. A moderation outage lets the
// request through; the providers still apply their own filters.
func (p *Pipeline) SetModerator(m PromptChecker) {
	p.moderator = m
}

// Regenerate runs one attempt for job. A page that already has sections or
// SEO is left untouched unless job.Overwrite is set; the caller gets
// StatusConfirmationRequired and nothing is written. The check runs again
// under the page lock before anything is applied. Every attempt past the
// first check writes exactly one audit row.
//
// Errors: NotFoundError for an unknown page, ValidationError for an unknown
// model, flagged parameters or an invalid document, ProviderError when the
// generator failed. A failed Result accompanies all but the first two.
func (p *Pipeline) Regenerate(ctx context.Context, job Job) (*Result, error) {
	modelID := strings.TrimSpace(job.Model)
	if modelID == "" {
		modelID = p.defaultModel
	}
	gen, err := p.generators.Lookup(modelID)
	if err != nil {
		return nil, &content.ValidationError{Field: "model", Message: err.Error()}
	}

	page, err := p.target.GetPage(ctx, job.PageID)
	if err != nil {
		return nil, err
	}

	if hasContent(page) && !job.Overwrite {
		regenTotal.WithLabelValues(modelID, string(StatusConfirmationRequired)).Inc()
		return &Result{
			Status: StatusConfirmationRequired,
			Reason: (&content.ConfirmationRequiredError{Flag: OverwriteFlag}).Error(),
		}, nil
	}

	req := Request{
		PageID: page.ID,
		Title:  page.Title,
		Slug:   page.Slug,
		Type:   page.Type,
		Params: job.Params,
	}
	attempt := models.AiGenerationLog{
		PageID:     page.ID,
		ModelUsed:  modelID,
		PromptUsed: PromptSummary(req),
	}

	if flagged, categories := p.moderate(ctx, job.Params); flagged {
		err := fmt.Errorf("prompt flagged by moderation: %s", strings.Join(categories, ", "))
		p.record(ctx, attempt, models.GenerationFailed, err)
		return p.fail(modelID, models.GenerationFailed, err), &content.ValidationError{
			Field:   "params",
			Message: err.Error(),
			Err:     err,
		}
	}

	out, err := p.generate(ctx, gen, modelID, req)
	if err != nil {
		p.record(ctx, attempt, models.GenerationFailed, err)
		return p.fail(modelID, models.GenerationFailed, err), &content.ProviderError{Provider: modelID, Err: err}
	}
	if out.Model != "" {
		attempt.ModelUsed = out.Model
	}
	attempt.TokensUsed = out.TokensUsed

	doc, err := DecodeDocument(out.Raw)
	if err != nil {
		p.record(ctx, attempt, models.GenerationInvalidJSON, err)
		return p.fail(modelID, models.GenerationInvalidJSON, err), &content.ValidationError{
			Field:   "document",
			Message: err.Error(),
			Err:     err,
		}
	}

	generated, err := doc.Generated()
	if err == nil {
		page, err = p.target.ApplyGenerated(ctx, job.PageID, generated, attempt, job.Overwrite)
	}
	if err != nil {
		p.record(ctx, attempt, models.GenerationFailed, err)
		var (
			nf      *content.NotFoundError
			confirm *content.ConfirmationRequiredError
		)
		if errors.As(err, &confirm) {
			// Content appeared while the provider was running.
			regenTotal.WithLabelValues(modelID, string(StatusConfirmationRequired)).Inc()
			return &Result{Status: StatusConfirmationRequired, Reason: confirm.Error()}, nil
		}
		if errors.As(err, &nf) {
			// Deleted while the provider was running.
			return nil, err
		}
		return p.fail(modelID, models.GenerationFailed, err), fmt.Errorf("apply generated content: %w", err)
	}

	regenTotal.WithLabelValues(modelID, string(StatusOK)).Inc()
	slog.Info("page regenerated", "page_id", page.ID, "model", attempt.ModelUsed, "tokens", attempt.TokensUsed)
	return &Result{Status: StatusOK, Page: page}, nil
}

// generate calls the generator under the provider timeout.
func (p *Pipeline) generate(ctx context.Context, gen Generator, modelID string, req Request) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	out, err := gen.GenerateContent(ctx, req)
	providerLatency.WithLabelValues(modelID).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("generator returned no output")
	}
	return out, nil
}

// record writes the audit row of an attempt that did not succeed. The
// caller's context may already be done, so a detached one is used.
func (p *Pipeline) record(ctx context.Context, attempt models.AiGenerationLog, status models.GenerationStatus, cause error) {
	attempt.ResponseStatus = status
	msg := cause.Error()
	attempt.ErrorMessage = &msg

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.target.RecordGenerationAttempt(ctx, attempt); err != nil {
		slog.Error("record generation attempt", "page_id", attempt.PageID, "status", status, "error", err)
	}
}

func (p *Pipeline) fail(modelID string, status models.GenerationStatus, cause error) *Result {
	regenTotal.WithLabelValues(modelID, string(status)).Inc()
	slog.Warn("regeneration failed", "model", modelID, "status", status, "error", cause)
	return &Result{Status: StatusFailed, Reason: cause.Error()}
}

// moderate checks the free-text parameters. It reports flagged only on a
// definite verdict.
func (p *Pipeline) moderate(ctx context.Context, params Params) (bool, []string) {
	if p.moderator == nil {
		return false, nil
	}
	res, err := p.moderator.CheckPrompt(ctx, moderationText(params))
	if err != nil {
		slog.Warn("moderation check failed, allowing prompt", "error", err)
		return false, nil
	}
	if res.Safe {
		return false, nil
	}
	slog.Warn("prompt flagged by moderation", "categories", strings.Join(res.Categories, ", "))
	return true, res.Categories
}

// moderationText joins the caller-written parameters, one per line.
func moderationText(params Params) string {
	fields := append([]string{params.Topic, params.Audience, params.Tone, params.Instructions}, params.Keywords...)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "\n")
}

// hasContent reports whether regenerating would destroy existing content.
func hasContent(p *models.Page) bool {
	return len(p.Sections) > 0 || p.Seo != nil
}
