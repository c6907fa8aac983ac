// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/SchemaCouncil/services/pipeline/gateway"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/memory"
)

const exhibitText = "SERVICE AGREEMENT\n\nThis Agreement is made between Acme Corp and Zenith LLC.\n" +
	"Effective Date: January 5, 2026. Term: 24 months.\n"

// stubClient counts persona calls and lets a test override individual
// personas while the scripted client serves the rest.
type stubClient struct {
	mu       sync.Mutex
	calls    map[string]int
	override func(persona, system, user string) (string, bool, error)
	base     *gateway.ScriptedClient
}

func newStubClient(override func(persona, system, user string) (string, bool, error)) *stubClient {
	return &stubClient{
		calls:    make(map[string]int),
		override: override,
		base:     gateway.NewScriptedClient(),
	}
}

func classifyPersona(system, user string) string {
	switch {
	case strings.Contains(system, "You are Goal-Router"):
		return "goal_router"
	case strings.Contains(system, "You are Goal-Setter"):
		return "goal_setter"
	case strings.Contains(system, "You are a Schema Proposer"):
		return "proposer"
	case strings.Contains(system, "You are Prompt-Builder"):
		return "prompt_builder"
	case strings.Contains(system, "You are a Schema Critic"):
		return "critic"
	case strings.Contains(system, "You are Governor"):
		return "governor"
	case strings.Contains(system, "You are Tutor"):
		return "tutor"
	case strings.HasPrefix(user, "EXHIBIT:"):
		return "extractor"
	}
	return "unknown"
}

func (c *stubClient) SendChat(ctx context.Context, messages []gateway.Message) (string, error) {
	var system, user string
	if len(messages) > 0 {
		system = messages[0].Content
		user = messages[len(messages)-1].Content
	}
	persona := classifyPersona(system, user)

	c.mu.Lock()
	c.calls[persona]++
	c.mu.Unlock()

	if c.override != nil {
		if text, handled, err := c.override(persona, system, user); handled {
			return text, err
		}
	}
	return c.base.SendChat(ctx, messages)
}

func (c *stubClient) callCount(persona string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[persona]
}

func newTestRunner(t *testing.T, chat gateway.Client) (*Runner, *memory.Store) {
	t.Helper()
	mem := memory.NewStore(t.TempDir())
	return New(mem, chat, Options{}), mem
}

func TestRun_SimulatedEndToEnd(t *testing.T) {
	r, mem := newTestRunner(t, gateway.NewScriptedClient())
	artifacts := t.TempDir()

	res, st, err := r.Run(context.Background(), Request{
		ExhibitID:    "exhibit-1",
		ExhibitText:  exhibitText,
		ArtifactsDir: artifacts,
		EnableTutor:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "exhibit-1", res.ExhibitID)
	assert.Equal(t, "Simulated Goal", res.GoalTitle)
	assert.Equal(t, []string{
		"proposer_max_information",
		"proposer_min_redundancy",
		"proposer_evidence_first",
		"proposer_robust_general",
	}, res.Candidates)
	// Scripted governor picks the first candidate; scripted tutor
	// answers NO-CHANGE, so no challenger round.
	assert.Equal(t, "proposer_max_information", res.ChampionCandidateID)
	assert.Equal(t, res.ChampionCandidateID, st.ChampionID())

	base := filepath.Join(artifacts, "exhibit-1")
	for _, name := range []string{"goal.json", "governor.json"} {
		_, err := os.Stat(filepath.Join(base, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(base, "governor_2.json"))
	assert.True(t, os.IsNotExist(err), "NO-CHANGE must not produce a second governance round")
	_, err = os.Stat(filepath.Join(base, CandidateTutorChallenger))
	assert.True(t, os.IsNotExist(err))

	for _, id := range res.Candidates {
		dir := filepath.Join(base, id)
		for _, name := range []string{"schema.json", "prompt.txt", "extraction.json", "critic_evidence.json"} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, filepath.Join(id, name))
		}
	}

	champ, err := mem.GetChampion(res.GoalID)
	require.NoError(t, err)
	assert.Equal(t, res.ChampionCandidateID, champ.CandidateID)
	assert.NotNil(t, champ.Schema)
}

func TestRun_ParallelCandidates(t *testing.T) {
	r, _ := newTestRunner(t, gateway.NewScriptedClient())

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:     "exhibit-par",
		ExhibitText:   exhibitText,
		ArtifactsDir:  t.TempDir(),
		MaxConcurrent: 4,
	})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 4)
	assert.Equal(t, "proposer_max_information", res.ChampionCandidateID)
}

func TestRun_RejectsEmptyRequest(t *testing.T) {
	r, _ := newTestRunner(t, gateway.NewScriptedClient())

	_, _, err := r.Run(context.Background(), Request{ExhibitID: "x"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, _, err = r.Run(context.Background(), Request{ExhibitText: "y"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	// Exhibit ids become artifact directory names; traversal attempts
	// are rejected before any filesystem access.
	_, _, err = r.Run(context.Background(), Request{ExhibitID: "../escape", ExhibitText: "y"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRun_GoalTextRawSkipsSetterAndRouter(t *testing.T) {
	chat := newStubClient(nil)
	r, mem := newTestRunner(t, chat)

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-2",
		ExhibitText: exhibitText,
		GoalText:    "Contract Key Dates",
	})
	require.NoError(t, err)

	assert.Equal(t, "Contract Key Dates", res.GoalTitle)
	assert.Zero(t, chat.callCount("goal_setter"))
	assert.Zero(t, chat.callCount("goal_router"))

	rec, err := mem.GetGoal(res.GoalID)
	require.NoError(t, err)
	assert.Equal(t, "Contract Key Dates", rec.Title)
	assert.Equal(t, "Contract Key Dates", rec.Blueprint)
}

func TestRun_GoalTextJSONObject(t *testing.T) {
	r, mem := newTestRunner(t, gateway.NewScriptedClient())

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-3",
		ExhibitText: exhibitText,
		GoalText:    `{"title": "Party Obligations", "blueprint": "Who owes what to whom."}`,
	})
	require.NoError(t, err)

	assert.Equal(t, "Party Obligations", res.GoalTitle)
	rec, err := mem.GetGoal(res.GoalID)
	require.NoError(t, err)
	assert.Equal(t, "Who owes what to whom.", rec.Blueprint)
}

func TestRun_RouterMatchReusesGoal(t *testing.T) {
	chat := newStubClient(nil)
	r, mem := newTestRunner(t, chat)

	prior, err := mem.UpsertGoal("Existing Goal", "Keep using this one.")
	require.NoError(t, err)

	chat.override = func(persona, system, user string) (string, bool, error) {
		if persona == "goal_router" {
			return `{"decision": "match", "goal_id": "` + prior.GoalID + `", "rationale": "same doc type"}`, true, nil
		}
		return "", false, nil
	}

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-4",
		ExhibitText: exhibitText,
	})
	require.NoError(t, err)

	assert.Equal(t, prior.GoalID, res.GoalID)
	assert.Equal(t, "Existing Goal", res.GoalTitle)
	assert.Zero(t, chat.callCount("goal_setter"))
}

func TestRun_RouterGarbageFallsThroughToSetter(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "goal_router" {
			return "I cannot decide, sorry.", true, nil
		}
		return "", false, nil
	})
	r, mem := newTestRunner(t, chat)

	_, err := mem.UpsertGoal("Existing Goal", "bp")
	require.NoError(t, err)

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-5",
		ExhibitText: exhibitText,
	})
	require.NoError(t, err)
	assert.Equal(t, "Simulated Goal", res.GoalTitle)
	assert.Equal(t, 1, chat.callCount("goal_setter"))
}

func TestRun_GoalSetterMissingTitleFatal(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "goal_setter" {
			return `{"blueprint": "a blueprint with no title"}`, true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)

	_, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-6",
		ExhibitText: exhibitText,
	})
	require.ErrorIs(t, err, ErrGoalTitleMissing)
}

func TestRun_ProposerDoubleFailureDropsStyle(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "proposer" && strings.Contains(system, "Minimize redundancy") {
			return "no json here at all", true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)
	artifacts := t.TempDir()

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:    "exhibit-7",
		ExhibitText:  exhibitText,
		GoalText:     "Contract Basics",
		ArtifactsDir: artifacts,
	})
	require.NoError(t, err)

	assert.NotContains(t, res.Candidates, "proposer_min_redundancy")
	assert.Len(t, res.Candidates, 3)

	dir := filepath.Join(artifacts, "exhibit-7", "proposer_min_redundancy")
	for _, name := range []string{"schema_raw.txt", "schema_raw_retry.txt", "schema_error.txt"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_ProposerRetryRecovers(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "proposer" && strings.Contains(system, "Minimize redundancy") {
			mu.Lock()
			attempts++
			first := attempts == 1
			mu.Unlock()
			if first {
				return "garbled output", true, nil
			}
			return `{"fields": [{"name": "term_months", "type": "string"}]}`, true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)

	res, st, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-8",
		ExhibitText: exhibitText,
		GoalText:    "Contract Basics",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Candidates, "proposer_min_redundancy")
	_, ok := st.Schema("proposer_min_redundancy")
	assert.True(t, ok)
}

func TestRun_ExtractorInvalidTwiceEvictsAll(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "extractor" {
			return "definitely not json", true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)
	artifacts := t.TempDir()

	_, _, err := r.Run(context.Background(), Request{
		ExhibitID:      "exhibit-9",
		ExhibitText:    exhibitText,
		GoalText:       "Contract Basics",
		ProposerStyles: []string{"max_information"},
		ArtifactsDir:   artifacts,
	})
	require.ErrorIs(t, err, ErrNoViableCandidates)

	errFile := filepath.Join(artifacts, "exhibit-9", "proposer_max_information", "candidate_error.txt")
	data, rerr := os.ReadFile(errFile)
	require.NoError(t, rerr)
	assert.Contains(t, string(data), "did not return valid JSON")
}

func TestRun_CriticDoubleFailureSkipsStyleOnly(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "critic" && strings.Contains(system, "Focus: redundancy") {
			return "not json", true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)
	artifacts := t.TempDir()

	res, st, err := r.Run(context.Background(), Request{
		ExhibitID:      "exhibit-10",
		ExhibitText:    exhibitText,
		GoalText:       "Contract Basics",
		ProposerStyles: []string{"max_information"},
		CriticStyles:   []string{"informativeness", "redundancy"},
		ArtifactsDir:   artifacts,
	})
	require.NoError(t, err)
	// The candidate survives with a partial council.
	assert.Equal(t, []string{"proposer_max_information"}, res.Candidates)
	assert.True(t, st.HasCritique("proposer_max_information", "informativeness"))
	assert.False(t, st.HasCritique("proposer_max_information", "redundancy"))

	_, serr := os.Stat(filepath.Join(artifacts, "exhibit-10", "proposer_max_information", "critic_redundancy_error.txt"))
	assert.NoError(t, serr)
}

func TestRun_AllProposersFailing(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "proposer" {
			return "the model rambles without any JSON", true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)

	_, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-19",
		ExhibitText: exhibitText,
		GoalText:    "Contract Basics",
	})
	require.ErrorIs(t, err, ErrNoViableCandidates)
	// Every style gets its one retry before being dropped.
	assert.Equal(t, 8, chat.callCount("proposer"))
}

func TestRun_GovernorSeesFullCouncil(t *testing.T) {
	var payload string
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "governor" {
			payload = user
			return `{"champion_candidate_id": "proposer_evidence_first", "rationale": "best anchors"}`, true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:      "exhibit-20",
		ExhibitText:    exhibitText,
		GoalText:       "Contract Basics",
		ProposerStyles: []string{"max_information", "min_redundancy", "evidence_first"},
		CriticStyles:   []string{"informativeness", "evidence"},
	})
	require.NoError(t, err)

	// The governor may pick any member of the set, not just the first.
	assert.Equal(t, "proposer_evidence_first", res.ChampionCandidateID)

	for _, id := range []string{"proposer_max_information", "proposer_min_redundancy", "proposer_evidence_first"} {
		assert.Contains(t, payload, id)
	}
	// Parsed critic verdicts ride along in the council blocks.
	assert.Contains(t, payload, `"council"`)
	assert.Contains(t, payload, `"informativeness"`)
	assert.Contains(t, payload, `"verdict"`)
}

func TestRun_GovernorEmptyChampionFatal(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "governor" {
			return `{"champion_candidate_id": "", "rationale": "cannot choose"}`, true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)

	_, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-11",
		ExhibitText: exhibitText,
		GoalText:    "Contract Basics",
	})
	require.ErrorIs(t, err, ErrMissingChampionID)
}

func TestRun_GovernorUnknownChampionFatal(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "governor" {
			return `{"champion_candidate_id": "proposer_imaginary", "rationale": "made it up"}`, true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)

	_, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-12",
		ExhibitText: exhibitText,
		GoalText:    "Contract Basics",
	})
	require.ErrorIs(t, err, ErrUnknownChampion)
}

func TestRun_MemoryChampionSeeded(t *testing.T) {
	chat := newStubClient(nil)
	r, mem := newTestRunner(t, chat)

	goal, err := mem.UpsertGoal("Contract Basics", "bp")
	require.NoError(t, err)
	_, err = mem.SetChampion(goal.GoalID, "proposer_evidence_first",
		map[string]any{"fields": []any{map[string]any{"name": "effective_date"}}}, nil, nil)
	require.NoError(t, err)

	res, st, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-13",
		ExhibitText: exhibitText,
		GoalText:    "Contract Basics",
	})
	require.NoError(t, err)

	// The reigning champion enters the arena first and the scripted
	// governor picks the first candidate.
	require.Contains(t, res.Candidates, CandidateMemoryChampion)
	assert.Equal(t, CandidateMemoryChampion, res.Candidates[0])
	assert.Equal(t, CandidateMemoryChampion, res.ChampionCandidateID)
	assert.Equal(t, "memory", st.Proposer(CandidateMemoryChampion))
}

func TestRun_TutorChallengerPromoted(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		switch persona {
		case "tutor":
			return `{"fields": [{"name": "governing_law", "type": "string"}]}`, true, nil
		case "governor":
			if strings.Contains(user, CandidateTutorChallenger) {
				return `{"champion_candidate_id": "` + CandidateTutorChallenger + `", "rationale": "sharper schema"}`, true, nil
			}
		}
		return "", false, nil
	})
	r, mem := newTestRunner(t, chat)
	artifacts := t.TempDir()

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:    "exhibit-14",
		ExhibitText:  exhibitText,
		GoalText:     "Contract Basics",
		ArtifactsDir: artifacts,
		EnableTutor:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, CandidateTutorChallenger, res.ChampionCandidateID)

	base := filepath.Join(artifacts, "exhibit-14")
	_, serr := os.Stat(filepath.Join(base, "governor_2.json"))
	assert.NoError(t, serr)
	_, serr = os.Stat(filepath.Join(base, CandidateTutorChallenger, "extraction.json"))
	assert.NoError(t, serr)

	champ, err := mem.GetChampion(res.GoalID)
	require.NoError(t, err)
	assert.Equal(t, CandidateTutorChallenger, champ.CandidateID)
}

func TestRun_TutorInvalidChallengerFatal(t *testing.T) {
	chat := newStubClient(func(persona, system, user string) (string, bool, error) {
		if persona == "tutor" {
			return "I would restructure everything completely.", true, nil
		}
		return "", false, nil
	})
	r, _ := newTestRunner(t, chat)

	_, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-15",
		ExhibitText: exhibitText,
		GoalText:    "Contract Basics",
		EnableTutor: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tutor challenger schema invalid")
}

func TestRun_ResumeSkipsCompletedCandidates(t *testing.T) {
	artifacts := t.TempDir()

	first, _ := newTestRunner(t, gateway.NewScriptedClient())
	res1, _, err := first.Run(context.Background(), Request{
		ExhibitID:    "exhibit-16",
		ExhibitText:  exhibitText,
		GoalText:     "Contract Basics",
		ArtifactsDir: artifacts,
	})
	require.NoError(t, err)
	require.Len(t, res1.Candidates, 4)

	// Fresh memory so no champion is seeded; the artifact tree alone
	// must reconstruct every candidate.
	chat := newStubClient(nil)
	second, _ := newTestRunner(t, chat)
	res2, st, err := second.Run(context.Background(), Request{
		ExhibitID:    "exhibit-16",
		ExhibitText:  exhibitText,
		GoalText:     "Contract Basics",
		ArtifactsDir: artifacts,
		Resume:       true,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, res1.Candidates, res2.Candidates)
	assert.Zero(t, chat.callCount("proposer"), "resume must not regenerate schemas")
	assert.Zero(t, chat.callCount("prompt_builder"))
	assert.Zero(t, chat.callCount("extractor"), "resume must not re-extract")
	assert.Zero(t, chat.callCount("critic"))
	assert.Equal(t, 1, chat.callCount("governor"), "governance always re-adjudicates")

	for _, id := range res2.Candidates {
		_, ok := st.Extraction(id)
		assert.True(t, ok, "resumed extraction for %s", id)
	}
}

func TestRun_ResumeIgnoresCorruptExtraction(t *testing.T) {
	artifacts := t.TempDir()

	first, _ := newTestRunner(t, gateway.NewScriptedClient())
	_, _, err := first.Run(context.Background(), Request{
		ExhibitID:      "exhibit-17",
		ExhibitText:    exhibitText,
		GoalText:       "Contract Basics",
		ProposerStyles: []string{"max_information"},
		ArtifactsDir:   artifacts,
	})
	require.NoError(t, err)

	// Simulate a crash mid-write: truncated extraction artifact.
	extPath := filepath.Join(artifacts, "exhibit-17", "proposer_max_information", "extraction.json")
	require.NoError(t, os.WriteFile(extPath, []byte(`{"values": {"fi`), 0o644))

	chat := newStubClient(nil)
	second, _ := newTestRunner(t, chat)
	_, st, err := second.Run(context.Background(), Request{
		ExhibitID:      "exhibit-17",
		ExhibitText:    exhibitText,
		GoalText:       "Contract Basics",
		ProposerStyles: []string{"max_information"},
		ArtifactsDir:   artifacts,
		Resume:         true,
	})
	require.NoError(t, err)

	assert.Zero(t, chat.callCount("proposer"), "schema artifact is still valid")
	assert.Equal(t, 1, chat.callCount("extractor"), "corrupt extraction must be redone")

	ext, ok := st.Extraction("proposer_max_information")
	require.True(t, ok)
	assert.NotContains(t, ext, `{"fi`)
}

func TestRun_ChampionCommittedUnderLock(t *testing.T) {
	r, mem := newTestRunner(t, gateway.NewScriptedClient())

	res, _, err := r.Run(context.Background(), Request{
		ExhibitID:   "exhibit-18",
		ExhibitText: exhibitText,
		GoalText:    "Contract Basics",
	})
	require.NoError(t, err)

	champ, err := mem.GetChampion(res.GoalID)
	require.NoError(t, err)
	assert.Equal(t, res.ChampionCandidateID, champ.CandidateID)
	require.NotNil(t, champ.Prompt)
	assert.NotEmpty(t, *champ.Prompt)

	// The advisory lock is released after commit.
	release, err := mem.LockGoal(res.GoalID)
	require.NoError(t, err)
	release()
}
