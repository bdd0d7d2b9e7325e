package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainsAreLinked(t *testing.T) {
	table := NewTable()

	for _, role := range []Role{RoleEntrepreneur, RoleStartupper, RoleSpecialist} {
		chain := table.chains[role]
		require.NotEmpty(t, chain, "chain for %s", role)

		first := table.First(role)
		require.NotNil(t, first)
		assert.Equal(t, StateRoleSelection, first.Predecessor)
		assert.Equal(t, backToRolesCode, first.BackCode)

		// Every node except the first points back at the one before it, and
		// Next walks the same chain forward.
		for i := 1; i < len(chain); i++ {
			assert.Equal(t, chain[i-1].State, chain[i].Predecessor)
			next := table.Next(&chain[i-1])
			require.NotNil(t, next)
			assert.Equal(t, chain[i].State, next.State)
		}

		last := chain[len(chain)-1]
		assert.True(t, last.Contact, "chain for %s must end in contact capture", role)
		assert.Nil(t, table.Next(&last))
	}
}

func TestResearcherHasNoChain(t *testing.T) {
	table := NewTable()
	assert.Nil(t, table.First(RoleResearcher))
}

func TestChainKeysMatchProfileColumns(t *testing.T) {
	table := NewTable()

	assert.Equal(t, []string{"process_pain", "time_lost", "department_affected"},
		table.ChainKeys(RoleEntrepreneur))
	assert.Equal(t, []string{"problem_solved", "current_stage", "main_barrier"},
		table.ChainKeys(RoleStartupper))
	assert.Equal(t, []string{"main_skill", "project_interests", "work_format"},
		table.ChainKeys(RoleSpecialist))
}

func TestStateNamesPairRoleAndPosition(t *testing.T) {
	table := NewTable()

	node, ok := table.Node("entrepreneur:q2")
	require.True(t, ok)
	assert.Equal(t, RoleEntrepreneur, node.Role)
	assert.Equal(t, 1, node.Index)
	assert.Equal(t, "time_lost", node.Key)

	_, ok = table.Node("entrepreneur:q9")
	assert.False(t, ok)
}

func TestPresetValuesAreCanonical(t *testing.T) {
	table := NewTable()

	node, ok := table.Node("entrepreneur:q2")
	require.True(t, ok)
	values := make([]string, 0, len(node.Options))
	for _, opt := range node.Options {
		values = append(values, opt.Value)
	}
	assert.Equal(t, []string{"0-10", "10-30", "30+"}, values)

	node, ok = table.Node("startupper:q2")
	require.True(t, ok)
	values = values[:0]
	for _, opt := range node.Options {
		values = append(values, opt.Value)
	}
	assert.Equal(t, []string{"idea", "prototype", "clients"}, values)
}

func TestTruncateDownstream(t *testing.T) {
	table := NewTable()
	answers := map[string]string{
		"process_pain":        "Обработка заявок",
		"time_lost":           "10-30",
		"department_affected": "Отдел продаж",
	}

	table.truncateDownstream(RoleEntrepreneur, 0, answers)

	assert.Equal(t, map[string]string{"process_pain": "Обработка заявок"}, answers)
}

func TestTruncateDownstreamAtChainEndKeepsEverything(t *testing.T) {
	table := NewTable()
	answers := map[string]string{
		"main_skill":        "Python",
		"project_interests": "Финтех",
		"work_format":       "project",
	}

	table.truncateDownstream(RoleSpecialist, 2, answers)

	assert.Len(t, answers, 3)
}
