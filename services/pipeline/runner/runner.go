// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runner orchestrates one extraction pipeline run.
//
// A run resolves an analytical goal for the exhibit, generates
// competing schema candidates, evaluates each through extraction and
// a critic council, lets the governor pick a champion, optionally
// gives a tutor one challenger round, and commits the winner to the
// memory store for warm-starting future runs of the same goal.
//
// Failure isolation: a broken proposer style or candidate never
// aborts the run; it is dropped with a diagnostic artifact. The run
// only fails when a contract is violated (governor naming an unknown
// candidate, goal-setter omitting a title) or when no candidate
// survives at all.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/SchemaCouncil/pkg/jsonx"
	"github.com/AleutianAI/SchemaCouncil/pkg/validation"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/gateway"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/memory"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/personas"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/views"
)

var tracer = otel.Tracer("schemacouncil.pipeline")

// Reserved candidate ids. Proposer candidates are named
// "proposer_<style>".
const (
	CandidateMemoryChampion  = "memory_champion"
	CandidateTutorChallenger = "tutor_challenger"
	proposerIDPrefix         = "proposer_"
)

const goalLockTimeout = 5 * time.Second

// ViewSet is the per-persona document view configuration for one run.
// Zero-value specs mean a full view.
type ViewSet struct {
	Goal      views.Spec
	Schema    views.Spec
	Extractor views.Spec
	Critic    views.Spec
}

// Request describes one pipeline run.
type Request struct {
	ExhibitID   string
	ExhibitText string

	// GoalText, when non-empty, pins the goal: either a {"title",
	// "blueprint"} JSON document or raw text used as the title.
	GoalText string

	// ArtifactsDir is the root of the artifact tree. Empty disables
	// artifact writing (and therefore resume).
	ArtifactsDir string

	// ProposerStyles and CriticStyles default to the registry's
	// canonical lists when empty.
	ProposerStyles []string
	CriticStyles   []string

	IncludeProvenance bool
	EnableTutor       bool

	// Resume reconstructs state from a prior run's artifacts before
	// executing, skipping candidates that are already complete.
	Resume bool

	// MaxConcurrent bounds parallel candidate evaluation. Values
	// below 1 run candidates sequentially.
	MaxConcurrent int

	Views ViewSet
}

// Result is the caller-facing summary of a completed run.
type Result struct {
	ExhibitID           string   `json:"exhibit_id"`
	GoalID              string   `json:"goal_id"`
	GoalTitle           string   `json:"goal_title"`
	Candidates          []string `json:"candidates"`
	ChampionCandidateID string   `json:"champion_candidate_id"`
	ArtifactsDir        string   `json:"artifacts_dir,omitempty"`
	GovernorDecision    string   `json:"governor_decision,omitempty"`
}

// Options configures optional Runner collaborators.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics defaults to instruments on a private registry.
	Metrics *Metrics
}

// Runner executes pipeline runs against a memory store and a chat
// transport.
//
// # Thread Safety
//
// A Runner is safe for concurrent use; each Run owns its own State.
// Concurrent runs against the same goal serialize their champion
// commit on the store's per-goal lock.
type Runner struct {
	mem     *memory.Store
	chat    gateway.Client
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Runner.
func New(mem *memory.Store, chat gateway.Client, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Runner{mem: mem, chat: chat, logger: logger, metrics: metrics}
}

// Run executes the full pipeline for one exhibit.
//
// The returned State exposes the run's working memory (all prompts,
// extractions, critiques) for callers that want more than the
// summary.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, *State, error) {
	if req.ExhibitID == "" || req.ExhibitText == "" {
		return nil, nil, fmt.Errorf("%w: exhibit id and text are required", ErrInvalidRequest)
	}
	if err := validation.ValidateExhibitID(req.ExhibitID); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	ctx, span := tracer.Start(ctx, "pipeline.Run",
		trace.WithAttributes(
			attribute.String("exhibit.id", req.ExhibitID),
			attribute.Bool("tutor.enabled", req.EnableTutor),
		),
	)
	defer span.End()

	start := time.Now()
	r.metrics.ActiveRuns.Inc()
	defer func() {
		r.metrics.ActiveRuns.Dec()
		r.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	if len(req.ProposerStyles) == 0 {
		req.ProposerStyles = personas.ProposerStyles()
	}
	if len(req.CriticStyles) == 0 {
		req.CriticStyles = personas.CriticStyles()
	}

	bundles := bundleSet{
		goal:      views.MakeBundle(req.ExhibitID, req.ExhibitText, req.Views.Goal),
		schema:    views.MakeBundle(req.ExhibitID, req.ExhibitText, req.Views.Schema),
		extractor: views.MakeBundle(req.ExhibitID, req.ExhibitText, req.Views.Extractor),
		critic:    views.MakeBundle(req.ExhibitID, req.ExhibitText, req.Views.Critic),
	}

	st := NewState(req.ExhibitID)
	logger := r.logger.With("exhibit_id", req.ExhibitID)

	// Phase 1: goal resolution.
	goal, err := r.resolveGoal(ctx, req.GoalText, bundles.goal)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	st.SetGoal(goal)
	span.SetAttributes(attribute.String("goal.id", goal.GoalID))
	logger.Info("goal resolved", "goal_id", goal.GoalID, "goal_title", goal.Title)

	artBase := ""
	if req.ArtifactsDir != "" {
		artBase = filepath.Join(req.ArtifactsDir, req.ExhibitID)
		if err := saveArtifact(filepath.Join(artBase, "goal.json"), marshalIndent(goal)); err != nil {
			return nil, nil, fmt.Errorf("writing goal artifact: %w", err)
		}
	}

	// Phase 2: resume scan.
	if artBase != "" && req.Resume {
		scanArtifacts(artBase, st)
		if resumed := st.CandidateIDs(); len(resumed) > 0 {
			logger.Info("resumed candidates from artifacts", "count", len(resumed))
		}
	}

	// Phase 3: warm-start seeding from the goal's reigning champion.
	if prior, err := r.mem.GetChampion(goal.GoalID); err == nil && prior.Schema != nil {
		if st.AddCandidate(CandidateMemoryChampion, prior.Schema, "memory") {
			logger.Info("seeded memory champion", "source_candidate", prior.CandidateID)
		}
	} else if err != nil && !errors.Is(err, memory.ErrNotFound) {
		return nil, nil, err
	}

	// Phase 4: candidate generation.
	r.generateCandidates(ctx, req, goal, bundles.schema, st, artBase, logger)

	// Phase 5: per-candidate evaluation with bounded parallelism.
	r.evaluateCandidates(ctx, req, goal, bundles, st, artBase, logger)

	if len(st.CandidateIDs()) == 0 {
		span.SetStatus(codes.Error, ErrNoViableCandidates.Error())
		return nil, nil, ErrNoViableCandidates
	}

	// Phase 6: governance.
	goalJSON := marshalIndent(goal)
	championID, decision, governorRaw, err := r.chooseChampion(ctx, goalJSON, st.CandidateIDs(), bundles.schema, st)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	st.SetChampion(championID, governorRaw)
	logger.Info("champion selected", "candidate_id", championID)

	if artBase != "" {
		if err := saveArtifact(filepath.Join(artBase, "governor.json"), marshalIndent(decision)); err != nil {
			return nil, nil, fmt.Errorf("writing governor artifact: %w", err)
		}
	}

	// Phase 7: optional tutor challenger round.
	if req.EnableTutor {
		decision, err = r.tutorRound(ctx, req, goal, bundles, st, artBase, decision, logger)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, nil, err
		}
	}

	// Phase 8: commit the champion to memory.
	if err := r.commitChampion(ctx, goal.GoalID, st, decision); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	span.SetAttributes(
		attribute.String("champion.candidate_id", st.ChampionID()),
		attribute.Int("candidates.surviving", len(st.CandidateIDs())),
	)
	span.SetStatus(codes.Ok, "")
	logger.Info("run completed",
		"goal_id", goal.GoalID,
		"champion", st.ChampionID(),
		"duration", time.Since(start),
	)

	return &Result{
		ExhibitID:           req.ExhibitID,
		GoalID:              goal.GoalID,
		GoalTitle:           goal.Title,
		Candidates:          st.CandidateIDs(),
		ChampionCandidateID: st.ChampionID(),
		ArtifactsDir:        req.ArtifactsDir,
		GovernorDecision:    st.GovernorRaw(),
	}, st, nil
}

type bundleSet struct {
	goal      views.Bundle
	schema    views.Bundle
	extractor views.Bundle
	critic    views.Bundle
}

// sendPersona ships one persona call through the gateway, recording
// metrics by persona name.
func (r *Runner) sendPersona(ctx context.Context, spec personas.Spec, bundle views.Bundle) (string, error) {
	text, err := r.chat.SendChat(ctx, personas.RenderMessages(spec, bundle))
	if err != nil {
		r.metrics.PersonaCalls.WithLabelValues(spec.Name, "error").Inc()
		return "", fmt.Errorf("%s call failed: %w", spec.Name, err)
	}
	r.metrics.PersonaCalls.WithLabelValues(spec.Name, "ok").Inc()
	return text, nil
}

// resolveGoal terminates with exactly one goal, never blocking on
// human input.
//
// Caller-supplied goal text wins: parsed as {"title","blueprint"}
// JSON when possible, otherwise used verbatim as the title. Without
// caller text, the router is asked to match an existing goal; any
// routing failure or "new" decision falls through to the goal-setter.
func (r *Runner) resolveGoal(ctx context.Context, goalText string, bundle views.Bundle) (*Goal, error) {
	if goalText != "" {
		if v, err := jsonx.Loose(goalText); err == nil {
			if obj, ok := v.(map[string]any); ok {
				title := strings.TrimSpace(stringField(obj, "title"))
				if title != "" {
					return r.upsertGoal(title, strings.TrimSpace(stringField(obj, "blueprint")))
				}
			}
		}
		title := strings.TrimSpace(goalText)
		return r.upsertGoal(title, title)
	}

	existing, err := r.mem.ListGoals()
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		summaries := make([]Goal, 0, len(existing))
		for _, g := range existing {
			summaries = append(summaries, Goal{GoalID: g.GoalID, Title: g.Title, Blueprint: g.Blueprint})
		}
		routerRaw, err := r.sendPersona(ctx, personas.GoalRouter(marshalIndent(summaries)), bundle)
		if err == nil {
			router, _ := jsonx.SafeParse(routerRaw).(map[string]any)
			decision := strings.ToLower(stringField(router, "decision"))
			matchedID := stringField(router, "goal_id")
			if decision == "match" && matchedID != "" {
				if g, err := r.mem.GetGoal(matchedID); err == nil {
					return &Goal{GoalID: g.GoalID, Title: g.Title, Blueprint: g.Blueprint}, nil
				}
			}
		}
	}

	goalRaw, err := r.sendPersona(ctx, personas.GoalSetter(), bundle)
	if err != nil {
		return nil, err
	}
	v, err := jsonx.Loose(goalRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoalTitleMissing, err)
	}
	obj, ok := v.(map[string]any)
	title := ""
	if ok {
		title = strings.TrimSpace(stringField(obj, "title"))
	}
	if title == "" {
		return nil, ErrGoalTitleMissing
	}
	return r.upsertGoal(title, strings.TrimSpace(stringField(obj, "blueprint")))
}

func (r *Runner) upsertGoal(title, blueprint string) (*Goal, error) {
	rec, err := r.mem.UpsertGoal(title, blueprint)
	if err != nil {
		return nil, err
	}
	return &Goal{GoalID: rec.GoalID, Title: rec.Title, Blueprint: rec.Blueprint}, nil
}

// generateCandidates calls the schema proposer once per requested
// style not already present. A style whose output fails loose JSON
// parsing is retried exactly once; failing again drops the style with
// diagnostic artifacts, never aborting the run.
func (r *Runner) generateCandidates(ctx context.Context, req Request, goal *Goal, bundle views.Bundle, st *State, artBase string, logger *slog.Logger) {
	goalJSON := marshalIndent(goal)

	for _, style := range req.ProposerStyles {
		candidateID := proposerIDPrefix + style
		if st.HasCandidate(candidateID) {
			continue
		}

		spec := personas.SchemaProposer(style, goalJSON)
		schemaRaw, err := r.sendPersona(ctx, spec, bundle)
		var schema any
		if err == nil {
			schema, err = jsonx.Loose(schemaRaw)
		}
		if err != nil {
			firstErr := err
			r.metrics.PersonaRetries.WithLabelValues(spec.Name).Inc()
			retryRaw, retryErr := r.sendPersona(ctx, spec, bundle)
			if retryErr == nil {
				schema, retryErr = jsonx.Loose(retryRaw)
			}
			if retryErr != nil {
				logger.Warn("proposer style dropped after retry",
					"style", style, "error", firstErr)
				if artBase != "" {
					dir := filepath.Join(artBase, candidateID)
					_ = saveArtifact(filepath.Join(dir, "schema_raw.txt"), schemaRaw)
					_ = saveArtifact(filepath.Join(dir, "schema_raw_retry.txt"), retryRaw)
					_ = saveArtifact(filepath.Join(dir, "schema_error.txt"), firstErr.Error())
				}
				continue
			}
		}
		st.AddCandidate(candidateID, schema, style)
	}
}

// evaluateCandidates runs the per-candidate sub-pipeline for every
// candidate lacking complete artifacts, evicting any candidate whose
// sub-pipeline fails.
func (r *Runner) evaluateCandidates(ctx context.Context, req Request, goal *Goal, bundles bundleSet, st *State, artBase string, logger *slog.Logger) {
	limit := req.MaxConcurrent
	if limit < 1 {
		limit = 1
	}

	g := &errgroup.Group{}
	g.SetLimit(limit)

	for _, candidateID := range st.CandidateIDs() {
		if artBase != "" && req.Resume && r.candidateComplete(st, candidateID, req.CriticStyles) {
			continue
		}
		candidateID := candidateID
		g.Go(func() error {
			schema, ok := st.Schema(candidateID)
			if !ok {
				return nil
			}
			if err := r.runCandidate(ctx, candidateID, schema, goal, req, bundles, st, artBase); err != nil {
				logger.Warn("candidate evicted", "candidate_id", candidateID, "error", err)
				r.metrics.CandidateEvictions.Inc()
				st.Evict(candidateID)
				if artBase != "" {
					_ = saveArtifact(filepath.Join(artBase, candidateID, "candidate_error.txt"), err.Error())
				}
			}
			return nil
		})
	}
	// Workers never return errors; eviction is the failure path.
	_ = g.Wait()
}

func (r *Runner) candidateComplete(st *State, candidateID string, criticStyles []string) bool {
	if _, ok := st.Prompt(candidateID); !ok {
		return false
	}
	if _, ok := st.Extraction(candidateID); !ok {
		return false
	}
	for _, style := range criticStyles {
		if !st.HasCritique(candidateID, style) {
			return false
		}
	}
	return true
}

// runCandidate executes the sub-pipeline: build the extraction prompt,
// extract (retrying once on invalid JSON), then run the critic
// council (each critic retried once; a critic failing twice is
// skipped with a diagnostic, not fatal). All artifacts are written as
// a side effect for future resumes.
func (r *Runner) runCandidate(ctx context.Context, candidateID string, schema any, goal *Goal, req Request, bundles bundleSet, st *State, artBase string) error {
	goalJSON := marshalIndent(goal)
	schemaJSON := marshalIndent(schema)

	prompt, err := r.sendPersona(ctx, personas.PromptBuilder(goalJSON, schemaJSON, req.IncludeProvenance), bundles.schema)
	if err != nil {
		return err
	}
	st.SetPrompt(candidateID, prompt)

	extractorSpec := personas.Extractor(prompt)
	extraction, err := r.sendPersona(ctx, extractorSpec, bundles.extractor)
	if err != nil {
		return err
	}
	if _, perr := jsonx.Strict(extraction); perr != nil {
		r.metrics.PersonaRetries.WithLabelValues(extractorSpec.Name).Inc()
		retry, rerr := r.sendPersona(ctx, extractorSpec, bundles.extractor)
		if rerr != nil {
			return rerr
		}
		if _, perr := jsonx.Strict(retry); perr != nil {
			return fmt.Errorf("%s: %w", candidateID, ErrExtractorInvalidJSON)
		}
		extraction = retry
	}
	st.SetExtraction(candidateID, extraction)

	for _, style := range req.CriticStyles {
		spec := personas.SchemaCritic(style, goalJSON, schemaJSON, extraction)
		critRaw, err := r.sendPersona(ctx, spec, bundles.critic)
		if err != nil {
			return err
		}
		if _, perr := jsonx.Strict(critRaw); perr != nil {
			r.metrics.PersonaRetries.WithLabelValues(spec.Name).Inc()
			retry, rerr := r.sendPersona(ctx, spec, bundles.critic)
			if rerr != nil {
				return rerr
			}
			if _, retryPerr := jsonx.Strict(retry); retryPerr != nil {
				// One broken critic does not sink the candidate.
				if artBase != "" {
					_ = saveArtifact(
						filepath.Join(artBase, candidateID, "critic_"+style+"_error.txt"),
						perr.Error(),
					)
				}
				continue
			}
			critRaw = retry
		}
		st.SetCritique(candidateID, style, critRaw)
	}

	if artBase != "" {
		dir := filepath.Join(artBase, candidateID)
		if err := saveArtifact(filepath.Join(dir, "schema.json"), schemaJSON); err != nil {
			return err
		}
		if err := saveArtifact(filepath.Join(dir, "prompt.txt"), prompt); err != nil {
			return err
		}
		if err := saveArtifact(filepath.Join(dir, "extraction.json"), extraction); err != nil {
			return err
		}
		for style, critRaw := range st.Critiques(candidateID) {
			if err := saveArtifact(filepath.Join(dir, "critic_"+style+".json"), critRaw); err != nil {
				return err
			}
		}
	}
	return nil
}

// governorCandidate is one entry of the governance payload.
type governorCandidate struct {
	CandidateID string         `json:"candidate_id"`
	Proposer    string         `json:"proposer"`
	Schema      any            `json:"schema"`
	Council     map[string]any `json:"council"`
}

func (r *Runner) buildGovernorPayload(candidateIDs []string, st *State) []governorCandidate {
	payload := make([]governorCandidate, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		schema, ok := st.Schema(id)
		if !ok {
			continue
		}
		council := make(map[string]any)
		for style, text := range st.Critiques(id) {
			// Unparsable critiques degrade to raw text so the
			// adjudicator still sees them.
			council[style] = jsonx.SafeParse(text)
		}
		payload = append(payload, governorCandidate{
			CandidateID: id,
			Proposer:    st.Proposer(id),
			Schema:      schema,
			Council:     council,
		})
	}
	return payload
}

// chooseChampion asks the governor to adjudicate candidateIDs and
// enforces the adjudication contract: the returned id must be
// non-empty and a member of the supplied set. Anything else is a hard
// error; a hallucinated id is never silently accepted.
func (r *Runner) chooseChampion(ctx context.Context, goalJSON string, candidateIDs []string, bundle views.Bundle, st *State) (string, any, string, error) {
	payload := r.buildGovernorPayload(candidateIDs, st)
	governorRaw, err := r.sendPersona(ctx, personas.Governor(goalJSON, marshalIndent(payload)), bundle)
	if err != nil {
		return "", nil, "", err
	}

	decision := jsonx.SafeParse(governorRaw)
	obj, _ := decision.(map[string]any)
	championID := strings.TrimSpace(stringField(obj, "champion_candidate_id"))
	if championID == "" {
		return "", nil, "", ErrMissingChampionID
	}
	allowed := false
	for _, id := range candidateIDs {
		if id == championID {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", nil, "", fmt.Errorf("%w: %q", ErrUnknownChampion, championID)
	}
	return championID, decision, governorRaw, nil
}

// tutorRound lets the tutor inspect the champion and propose a
// challenger. A NO-CHANGE verdict leaves the champion untouched;
// otherwise the challenger runs the full sub-pipeline and governance
// re-adjudicates restricted to exactly champion vs challenger.
func (r *Runner) tutorRound(ctx context.Context, req Request, goal *Goal, bundles bundleSet, st *State, artBase string, decision any, logger *slog.Logger) (any, error) {
	championID := st.ChampionID()
	champSchema, _ := st.Schema(championID)
	champExtraction, _ := st.Extraction(championID)

	council := make(map[string]any)
	for style, text := range st.Critiques(championID) {
		council[style] = jsonx.SafeParse(text)
	}

	goalJSON := marshalIndent(goal)
	tutorRaw, err := r.sendPersona(ctx, personas.Tutor(
		goalJSON,
		marshalIndent(champSchema),
		champExtraction,
		marshalIndent(council),
	), bundles.schema)
	if err != nil {
		return nil, err
	}

	if strings.Contains(strings.ToUpper(tutorRaw), "NO-CHANGE") {
		logger.Info("tutor kept the champion", "candidate_id", championID)
		return decision, nil
	}

	challengerSchema, err := jsonx.Loose(tutorRaw)
	if err != nil {
		return nil, fmt.Errorf("tutor challenger schema invalid: %w", err)
	}
	st.AddCandidate(CandidateTutorChallenger, challengerSchema, "tutor")
	if err := r.runCandidate(ctx, CandidateTutorChallenger, challengerSchema, goal, req, bundles, st, artBase); err != nil {
		return nil, fmt.Errorf("tutor challenger evaluation failed: %w", err)
	}

	newChampionID, decision2, governorRaw2, err := r.chooseChampion(
		ctx, goalJSON, []string{championID, CandidateTutorChallenger}, bundles.schema, st)
	if err != nil {
		return nil, err
	}
	st.SetChampion(newChampionID, governorRaw2)
	logger.Info("challenger round adjudicated",
		"champion", newChampionID,
		"promoted", newChampionID == CandidateTutorChallenger,
	)

	if artBase != "" {
		if err := saveArtifact(filepath.Join(artBase, "governor_2.json"), marshalIndent(decision2)); err != nil {
			return nil, fmt.Errorf("writing governor_2 artifact: %w", err)
		}
	}
	return decision2, nil
}

// commitChampion persists the winner under the goal's advisory lock.
// The lock serializes concurrent runs for the same goal; runs for
// different goals never contend.
func (r *Runner) commitChampion(ctx context.Context, goalID string, st *State, decision any) error {
	championID := st.ChampionID()
	schema, _ := st.Schema(championID)

	var promptPtr *string
	if prompt, ok := st.Prompt(championID); ok {
		promptPtr = &prompt
	}

	release, err := r.acquireGoalLock(ctx, goalID)
	if err != nil {
		return err
	}
	defer release()

	_, err = r.mem.SetChampion(goalID, championID, schema, promptPtr, decision)
	return err
}

func (r *Runner) acquireGoalLock(ctx context.Context, goalID string) (func(), error) {
	deadline := time.Now().Add(goalLockTimeout)
	for {
		release, err := r.mem.LockGoal(goalID)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, memory.ErrGoalLocked) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func stringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}
