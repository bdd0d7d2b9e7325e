package flow

import "fmt"

// Option is one preset answer: the button label shown to the user and the
// canonical value stored when it is selected.
type Option struct {
	Code  string
	Label string
	Value string
}

// QuestionNode is one step of a role's chain, immutable after startup.
type QuestionNode struct {
	State StateID
	Role  Role
	Index int

	// Key is the answer key this node fills.
	Key string

	// Prompt is the full prompt text; when PromptKeys is set it is a fmt
	// template interpolating previously stored answers.
	Prompt     string
	PromptKeys []string

	// Options is empty for free-text-only nodes. CustomCode, when set, is
	// the "write your own" selection that re-prompts for free text.
	Options      []Option
	CustomCode   string
	CustomPrompt string

	// Predecessor is the state rendered on back-navigation; BackCode is the
	// selection code carried by this node's back button.
	Predecessor StateID
	BackCode    string

	// Contact marks the contact-capture node closing the chain.
	Contact bool
}

func questionState(role Role, index int) StateID {
	return StateID(fmt.Sprintf("%s:q%d", role, index+1))
}

// Table holds the per-role question chains, built once at startup.
type Table struct {
	chains  map[Role][]QuestionNode
	byState map[StateID]*QuestionNode
}

// NewTable builds the four role chains. Entrepreneur, startupper and
// specialist run Q1..Q3 plus contact capture; researcher has no chain and is
// handled by the engine's info menu.
func NewTable() *Table {
	t := &Table{
		chains:  make(map[Role][]QuestionNode),
		byState: make(map[StateID]*QuestionNode),
	}

	t.add(RoleEntrepreneur, []QuestionNode{
		{
			Key:    "process_pain",
			Prompt: entrepreneurQ1Prompt,
			Options: []Option{
				{Code: "pain_requests", Label: "📝 Обработка заявок", Value: "Обработка заявок"},
				{Code: "pain_reports", Label: "📊 Подготовка отчетов", Value: "Подготовка отчетов"},
				{Code: "pain_support", Label: "💬 Ответы клиентам", Value: "Ответы на однотипные вопросы клиентов"},
			},
			CustomCode:   "pain_custom",
			CustomPrompt: entrepreneurQ1CustomPrompt,
			BackCode:     backToRolesCode,
		},
		{
			Key:    "time_lost",
			Prompt: entrepreneurQ2Prompt,
			Options: []Option{
				{Code: "time_0-10", Label: "До 10 часов", Value: "0-10"},
				{Code: "time_10-30", Label: "10-30 часов", Value: "10-30"},
				{Code: "time_30+", Label: "Больше 30 часов", Value: "30+"},
			},
			BackCode: "back_entrepreneur_q1",
		},
		{
			Key:    "department_affected",
			Prompt: entrepreneurQ3Prompt,
			Options: []Option{
				{Code: "dept_sales", Label: "💼 Отдел продаж", Value: "Отдел продаж"},
				{Code: "dept_support", Label: "📞 Поддержка клиентов", Value: "Поддержка клиентов"},
				{Code: "dept_accounting", Label: "💰 Бухгалтерия", Value: "Бухгалтерия"},
				{Code: "dept_logistics", Label: "🚚 Логистика", Value: "Логистика"},
			},
			CustomCode:   "dept_custom",
			CustomPrompt: entrepreneurQ3CustomPrompt,
			BackCode:     "back_entrepreneur_q2",
		},
		{
			Key:        "phone",
			Prompt:     entrepreneurContactPrompt,
			PromptKeys: []string{"department_affected", "time_lost"},
			BackCode:   "back_entrepreneur_q3",
			Contact:    true,
		},
	})

	t.add(RoleStartupper, []QuestionNode{
		{
			Key:      "problem_solved",
			Prompt:   startupperQ1Prompt,
			BackCode: backToRolesCode,
		},
		{
			Key:    "current_stage",
			Prompt: startupperQ2Prompt,
			Options: []Option{
				{Code: "stage_idea", Label: "Только идея", Value: "idea"},
				{Code: "stage_prototype", Label: "Есть прототип", Value: "prototype"},
				{Code: "stage_clients", Label: "Первые клиенты", Value: "clients"},
			},
			BackCode: "back_startupper_q1",
		},
		{
			Key:    "main_barrier",
			Prompt: startupperQ3Prompt,
			Options: []Option{
				{Code: "barrier_tech", Label: "👨‍💻 Нехватка разработчиков", Value: "Нехватка технических специалистов"},
				{Code: "barrier_mvp", Label: "🎯 Нет понимания MVP", Value: "Нет понимания MVP"},
				{Code: "barrier_design", Label: "🎨 Нужен дизайн", Value: "Нужен дизайн"},
				{Code: "barrier_marketing", Label: "💰 Нет денег на маркетинг", Value: "Нет денег на маркетинг"},
			},
			CustomCode:   "barrier_custom",
			CustomPrompt: startupperQ3CustomPrompt,
			BackCode:     "back_startupper_q2",
		},
		{
			Key:      "phone",
			Prompt:   startupperContactPrompt,
			BackCode: "back_startupper_q3",
			Contact:  true,
		},
	})

	t.add(RoleSpecialist, []QuestionNode{
		{
			Key:    "main_skill",
			Prompt: specialistQ1Prompt,
			Options: []Option{
				{Code: "skill_python", Label: "🐍 Python", Value: "Python"},
				{Code: "skill_react", Label: "⚛️ React/Frontend", Value: "React/Frontend разработка"},
				{Code: "skill_aiml", Label: "🤖 AI/ML", Value: "AI/ML"},
				{Code: "skill_design", Label: "🎨 UI/UX Design", Value: "UI/UX Design"},
				{Code: "skill_devops", Label: "☁️ DevOps", Value: "DevOps"},
			},
			CustomCode:   "skill_custom",
			CustomPrompt: specialistQ1CustomPrompt,
			BackCode:     backToRolesCode,
		},
		{
			Key:    "project_interests",
			Prompt: specialistQ2Prompt,
			Options: []Option{
				{Code: "proj_ai", Label: "🤖 AI-системы", Value: "Сложные AI-системы"},
				{Code: "proj_fintech", Label: "💰 Финтех", Value: "Финтех"},
				{Code: "proj_ecommerce", Label: "🛒 E-commerce", Value: "E-commerce"},
				{Code: "proj_mobile", Label: "📱 Мобильные приложения", Value: "Мобильные приложения"},
				{Code: "proj_startups", Label: "🚀 Стартапы", Value: "Стартапы"},
			},
			CustomCode:   "proj_custom",
			CustomPrompt: specialistQ2CustomPrompt,
			BackCode:     "back_specialist_q1",
		},
		{
			Key:    "work_format",
			Prompt: specialistQ3Prompt,
			Options: []Option{
				{Code: "format_project", Label: "Проектная работа", Value: "project"},
				{Code: "format_part_time", Label: "Частичная занятость", Value: "part_time"},
				{Code: "format_full_time", Label: "Полная занятость", Value: "full_time"},
			},
			BackCode: "back_specialist_q2",
		},
		{
			Key:      "phone",
			Prompt:   specialistContactPrompt,
			BackCode: "back_specialist_q3",
			Contact:  true,
		},
	})

	return t
}

func (t *Table) add(role Role, nodes []QuestionNode) {
	for i := range nodes {
		nodes[i].Role = role
		nodes[i].Index = i
		nodes[i].State = questionState(role, i)
		if i == 0 {
			nodes[i].Predecessor = StateRoleSelection
		} else {
			nodes[i].Predecessor = questionState(role, i-1)
		}
	}
	t.chains[role] = nodes
	for i := range nodes {
		t.byState[nodes[i].State] = &nodes[i]
	}
}

// Node looks up the question node owning the given state.
func (t *Table) Node(state StateID) (*QuestionNode, bool) {
	n, ok := t.byState[state]
	return n, ok
}

// First returns the opening node of a role's chain, nil when the role has
// no chain (researcher).
func (t *Table) First(role Role) *QuestionNode {
	chain := t.chains[role]
	if len(chain) == 0 {
		return nil
	}
	return &chain[0]
}

// Next returns the node following n in its chain, nil at the end.
func (t *Table) Next(n *QuestionNode) *QuestionNode {
	chain := t.chains[n.Role]
	if n.Index+1 >= len(chain) {
		return nil
	}
	return &chain[n.Index+1]
}

// ChainKeys lists the answer keys of a role's chain in order, excluding the
// contact node.
func (t *Table) ChainKeys(role Role) []string {
	var keys []string
	for _, n := range t.chains[role] {
		if !n.Contact {
			keys = append(keys, n.Key)
		}
	}
	return keys
}

// truncateDownstream drops answers for nodes strictly after index in the
// role's chain. Answers left behind by back-navigation become stale the
// moment an earlier question is re-answered.
func (t *Table) truncateDownstream(role Role, index int, answers map[string]string) {
	for _, n := range t.chains[role] {
		if n.Index > index {
			delete(answers, n.Key)
		}
	}
}
