package workflow

import (
	"errors"
	"fmt"
	"slices"
)

// Errores de construcción del grafo.
var (
	ErrInvalidDefinition = errors.New("workflow: definición inválida")
)

// Transition arista ya validada, con su guarda resuelta.
type Transition struct {
	TransitionDef
	guard Guard
}

// AllowsRole informa si el rol está entre los autorizados.
func (t Transition) AllowsRole(roleID int) bool {
	return slices.Contains(t.Roles, roleID)
}

// Satisfied evalúa la guarda; sin guarda siempre es verdadera.
func (t Transition) Satisfied(f Facts) bool {
	return t.guard == nil || t.guard(f)
}

type transitionKey struct {
	from   State
	action Action
}

// Graph grafo inmutable de estados y transiciones. Seguro para uso concurrente.
type Graph struct {
	states  map[State]StateInfo
	ordered []StateInfo
	initial map[MissionType]State
	edges   map[transitionKey][]Transition
	actions map[State][]Action
}

// Build valida la definición y construye el grafo.
func Build(def Definition) (*Graph, error) {
	g := &Graph{
		states:  make(map[State]StateInfo, len(def.States)),
		initial: make(map[MissionType]State),
		edges:   make(map[transitionKey][]Transition),
		actions: make(map[State][]Action),
	}
	finals := 0
	for _, s := range def.States {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: estado sin nombre", ErrInvalidDefinition)
		}
		if _, dup := g.states[s.Name]; dup {
			return nil, fmt.Errorf("%w: estado duplicado %s", ErrInvalidDefinition, s.Name)
		}
		s.InitialFor = slices.Clone(s.InitialFor)
		g.states[s.Name] = s
		g.ordered = append(g.ordered, s)
		if s.IsFinal {
			finals++
		}
		for _, t := range s.InitialFor {
			if !t.Valid() {
				return nil, fmt.Errorf("%w: tipo de misión desconocido %q", ErrInvalidDefinition, t)
			}
			if prev, ok := g.initial[t]; ok {
				return nil, fmt.Errorf("%w: %s tiene dos estados iniciales (%s, %s)", ErrInvalidDefinition, t, prev, s.Name)
			}
			if s.IsFinal {
				return nil, fmt.Errorf("%w: el estado inicial %s no puede ser final", ErrInvalidDefinition, s.Name)
			}
			g.initial[t] = s.Name
		}
	}
	slices.SortStableFunc(g.ordered, func(a, b StateInfo) int { return a.Order - b.Order })

	for _, t := range MissionTypes {
		if _, ok := g.initial[t]; !ok {
			return nil, fmt.Errorf("%w: %s no tiene estado inicial", ErrInvalidDefinition, t)
		}
	}
	if finals < 2 {
		return nil, fmt.Errorf("%w: se requieren al menos dos estados finales", ErrInvalidDefinition)
	}

	for i, d := range def.Transitions {
		if err := g.addTransition(d); err != nil {
			return nil, fmt.Errorf("transición %d (%s --%s--> %s): %w", i, d.From, d.Action, d.To, err)
		}
	}
	if err := g.checkReachability(); err != nil {
		return nil, err
	}
	return g, nil
}

// MustBuild igual que Build pero entra en pánico; para definiciones declaradas en código.
func MustBuild(def Definition) *Graph {
	g, err := Build(def)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Graph) addTransition(d TransitionDef) error {
	from, ok := g.states[d.From]
	if !ok {
		return fmt.Errorf("%w: estado origen desconocido", ErrInvalidDefinition)
	}
	if _, ok := g.states[d.To]; !ok {
		return fmt.Errorf("%w: estado destino desconocido", ErrInvalidDefinition)
	}
	if from.IsFinal {
		return fmt.Errorf("%w: un estado final no admite transiciones", ErrInvalidDefinition)
	}
	if _, ok := ParseAction(string(d.Action)); !ok {
		return fmt.Errorf("%w: acción desconocida", ErrInvalidDefinition)
	}
	if len(d.Roles) == 0 {
		return fmt.Errorf("%w: sin roles autorizados", ErrInvalidDefinition)
	}
	var guard Guard
	if d.Guard != "" {
		guard, ok = guardRegistry[d.Guard]
		if !ok {
			return fmt.Errorf("%w: guarda desconocida %q", ErrInvalidDefinition, d.Guard)
		}
	}
	d.Roles = slices.Clone(d.Roles)
	key := transitionKey{from: d.From, action: d.Action}
	if len(g.edges[key]) == 0 {
		g.actions[d.From] = append(g.actions[d.From], d.Action)
	}
	g.edges[key] = append(g.edges[key], Transition{TransitionDef: d, guard: guard})
	return nil
}

func (g *Graph) checkReachability() error {
	seen := make(map[State]bool, len(g.states))
	var queue []State
	for _, s := range g.initial {
		if !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, a := range g.actions[cur] {
			for _, t := range g.edges[transitionKey{from: cur, action: a}] {
				if !seen[t.To] {
					seen[t.To] = true
					queue = append(queue, t.To)
				}
			}
		}
	}
	for _, s := range g.ordered {
		if !seen[s.Name] {
			return fmt.Errorf("%w: el estado %s no es alcanzable", ErrInvalidDefinition, s.Name)
		}
	}
	return nil
}

// State devuelve los metadatos de un estado.
func (g *Graph) State(s State) (StateInfo, bool) {
	info, ok := g.states[s]
	return info, ok
}

// IsFinal informa si s es un estado terminal.
func (g *Graph) IsFinal(s State) bool {
	return g.states[s].IsFinal
}

// States devuelve el catálogo de estados ordenado por Order.
func (g *Graph) States() []StateInfo {
	return slices.Clone(g.ordered)
}

// InitialState estado en el que nace una misión del tipo dado.
func (g *Graph) InitialState(t MissionType) (State, bool) {
	s, ok := g.initial[t]
	return s, ok
}

// Candidates transiciones declaradas para (estado, acción), en orden de declaración.
func (g *Graph) Candidates(from State, action Action) []Transition {
	return slices.Clone(g.edges[transitionKey{from: from, action: action}])
}

// Actions acciones con al menos una transición desde el estado.
func (g *Graph) Actions(from State) []Action {
	return slices.Clone(g.actions[from])
}

// Transitions todas las aristas, en orden de estado y declaración. Usado para persistir la definición.
func (g *Graph) Transitions() []Transition {
	var out []Transition
	for _, s := range g.ordered {
		for _, a := range g.actions[s.Name] {
			out = append(out, g.edges[transitionKey{from: s.Name, action: a}]...)
		}
	}
	return out
}

// StatesForRole estados en los que el rol puede ejecutar alguna transición.
func (g *Graph) StatesForRole(roleID int) []State {
	var out []State
	for _, s := range g.ordered {
		for _, a := range g.actions[s.Name] {
			if slices.ContainsFunc(g.edges[transitionKey{from: s.Name, action: a}], func(t Transition) bool {
				return t.AllowsRole(roleID)
			}) {
				out = append(out, s.Name)
				break
			}
		}
	}
	return out
}

// Select elige la primera transición cuya guarda se cumple, en el orden dado.
func Select(candidates []Transition, f Facts) (Transition, bool) {
	for _, t := range candidates {
		if t.Satisfied(f) {
			return t, true
		}
	}
	return Transition{}, false
}

// Definition reconstruye la definición a partir del grafo.
func (g *Graph) Definition() Definition {
	def := Definition{States: g.States()}
	for _, t := range g.Transitions() {
		def.Transitions = append(def.Transitions, t.TransitionDef)
	}
	return def
}
