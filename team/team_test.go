package team

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/types"
)

func sampleTeam(name string) Team {
	return Team{
		Name:        name,
		Description: "sample",
		Mode:        ModeFlat,
		Roles: []AgentRole{
			{Name: "analyst", Instructions: "analyse", Weight: 0.9},
			{Name: "writer", Instructions: "write", Weight: 0.7},
		},
	}
}

func TestTeam_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Team)
		wantErr string
	}{
		{"valid", func(*Team) {}, ""},
		{"empty name", func(tm *Team) { tm.Name = "" }, "name cannot be empty"},
		{"no roles", func(tm *Team) { tm.Roles = nil }, "has no roles"},
		{"bad mode", func(tm *Team) { tm.Mode = "circular" }, "invalid mode"},
		{"empty role name", func(tm *Team) { tm.Roles[1].Name = "" }, "empty name"},
		{"duplicate role", func(tm *Team) { tm.Roles[1].Name = "analyst" }, "duplicate role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := sampleTeam("t")
			tt.mutate(&tm)
			err := tm.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTeam_RoleLookup(t *testing.T) {
	tm := sampleTeam("t")

	r, ok := tm.Role("writer")
	require.True(t, ok)
	assert.Equal(t, 0.7, r.Weight)

	_, ok = tm.Role("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"analyst", "writer"}, tm.RoleNames())
}

func TestRegistry_RegisterResolve(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.NoError(t, reg.Register(sampleTeam("alpha")))

	got, err := reg.Resolve("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	_, err := reg.Resolve("ghost")
	require.Error(t, err)
	assert.Equal(t, types.ErrUnknownTeam, types.GetErrorCode(err))
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	first := sampleTeam("t")
	first.Description = "first"
	second := sampleTeam("t")
	second.Description = "second"

	require.NoError(t, reg.Register(first))
	require.NoError(t, reg.Register(second))

	got, err := reg.Resolve("t")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Description)
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, reg.Register(sampleTeam(name)))
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, reg.Names())
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = reg.Register(sampleTeam(fmt.Sprintf("team-%d", i%5)))
		}(i)
	}
	wg.Wait()

	assert.Len(t, reg.List(), 5)
}

func TestRegisterBuiltin(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.NoError(t, RegisterBuiltin(reg))

	teams := reg.List()
	require.Len(t, teams, 10)

	for _, tm := range teams {
		assert.NoError(t, tm.Validate(), "team %s", tm.Name)
		assert.NotEmpty(t, tm.Description, "team %s", tm.Name)
		assert.NotEmpty(t, tm.Metadata["category"], "team %s", tm.Name)
		for _, r := range tm.Roles {
			assert.NotEmpty(t, r.Instructions, "role %s/%s", tm.Name, r.Name)
		}
	}

	lead, err := reg.Resolve("lead-generation-engine")
	require.NoError(t, err)
	assert.Equal(t, ModeHierarchical, lead.Mode)
	assert.Len(t, lead.Roles, 7)

	brand, err := reg.Resolve("brand-voice-guardian")
	require.NoError(t, err)
	assert.Equal(t, ModeFlat, brand.Mode)
}

func TestRoute(t *testing.T) {
	tests := []struct {
		goal string
		want string
	}{
		{"Build an outbound prospecting cadence for fintech ICPs", "lead-generation-engine"},
		{"Write a blog article targeting long-tail keywords", "content-marketing-team"},
		{"Improve our newsletter open rate and deliverability", "email-campaign-manager"},
		{"Plan a 30-day Instagram reel strategy", "social-media-strategist"},
		{"Analyse ROAS and CAC across paid channels", "campaign-analytics-hub"},
		{"Create battlecards against our top competitor", "competitive-intelligence"},
		{"Coach reps on objection handling for enterprise deals", "sales-enablement-team"},
		{"Launch an ABM play for 20 named accounts", "abm-orchestrator"},
		{"Define our tone of voice and messaging matrix", "brand-voice-guardian"},
		{"Design a referral programme with viral loops", "growth-hacker-lab"},
		{"Do something great", DefaultTeam},
	}
	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.goal))
		})
	}
}

func TestRoute_FirstHitWins(t *testing.T) {
	// "lead" 在路由表中先于 "analytics"
	assert.Equal(t, "lead-generation-engine", Route("lead analytics review"))
}
