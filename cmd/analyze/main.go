// Command analyze prints quick, human-readable heuristics about the mission
// files in a missions directory. It summarizes dimensions, the fox and goose
// setup, and highlights missions the fox cannot lose, geese that start next
// to the fox, and entities sharing a starting cell.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/foxandgeese/game/config"
	"github.com/wricardo/foxandgeese/game/engine"
)

// MissionAnalysis holds the heuristics computed for one mission
type MissionAnalysis struct {
	ID           string
	Name         string
	Width        int
	Height       int
	Fox          engine.Position
	Geese        int
	ByAI         map[engine.ControllerKind]int
	NearestGoose int
	Adjacent     int
	SharedCells  []engine.Position
	IdleReplays  []int
}

// FoxCanLose reports whether there are enough geese to overpower the fox
func (a MissionAnalysis) FoxCanLose() bool {
	return a.Geese >= engine.GooseMobSize
}

// MobbedAtStart reports whether enough geese start next to the fox to kill it
// in the first round
func (a MissionAnalysis) MobbedAtStart() bool {
	return a.Adjacent >= engine.GooseMobSize
}

func main() {
	dir := "missions"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("Error reading missions directory: %v\n", err)
		os.Exit(1)
	}

	for _, entry := range entries {
		if entry.IsDir() || !config.IsMissionFile(entry.Name()) {
			continue
		}
		fmt.Printf("\n=== Analyzing %s ===\n", entry.Name())
		analyzeFile(os.Stdout, filepath.Join(dir, entry.Name()))
	}
}

// analyzeFile prints the analysis of every mission in a file
func analyzeFile(w io.Writer, path string) {
	file, err := config.ReadMissionFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error reading file: %v\n", err)
		return
	}

	for _, id := range file.IDs() {
		def, err := file.Definition(id)
		if err != nil {
			fmt.Fprintf(w, "\n--- %s ---\n❌ %v\n", id, err)
			continue
		}
		printAnalysis(w, analyzeMission(def))
	}
}

// analyzeMission computes the heuristics of a valid mission definition
func analyzeMission(def *engine.MissionDefinition) MissionAnalysis {
	a := MissionAnalysis{
		ID:           def.ID,
		Name:         def.Name,
		Width:        def.Width,
		Height:       def.Height,
		Fox:          *def.Fox,
		Geese:        len(def.Geese),
		ByAI:         make(map[engine.ControllerKind]int),
		NearestGoose: -1,
	}

	occupied := map[engine.Position]int{a.Fox: 1}
	for i, g := range def.Geese {
		kind := g.AI
		if kind == "" {
			kind = engine.ControllerChase
		}
		a.ByAI[kind]++
		if kind == engine.ControllerReplay && len(g.Instructions) == 0 {
			a.IdleReplays = append(a.IdleReplays, i+1)
		}

		dist := engine.ChebyshevDistance(a.Fox, g.Position)
		if a.NearestGoose < 0 || dist < a.NearestGoose {
			a.NearestGoose = dist
		}
		if dist <= 1 {
			a.Adjacent++
		}
		occupied[g.Position]++
	}

	for pos, n := range occupied {
		if n > 1 {
			a.SharedCells = append(a.SharedCells, pos)
		}
	}
	sort.Slice(a.SharedCells, func(i, j int) bool {
		if a.SharedCells[i].Y != a.SharedCells[j].Y {
			return a.SharedCells[i].Y < a.SharedCells[j].Y
		}
		return a.SharedCells[i].X < a.SharedCells[j].X
	})

	return a
}

func printAnalysis(w io.Writer, a MissionAnalysis) {
	fmt.Fprintf(w, "\n--- %s ---\n", a.ID)
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Fox Position: (%d, %d)\n", a.Fox.X, a.Fox.Y)
	fmt.Fprintf(w, "Geese: %d (chase %d, wait %d, replay %d)\n", a.Geese,
		a.ByAI[engine.ControllerChase], a.ByAI[engine.ControllerWait], a.ByAI[engine.ControllerReplay])
	fmt.Fprintf(w, "Nearest Goose: %d rounds away\n", a.NearestGoose)

	if a.FoxCanLose() {
		fmt.Fprintf(w, "✅ %d geese can overpower the fox\n", engine.GooseMobSize)
	} else {
		fmt.Fprintf(w, "⚠️  WARNING: fewer than %d geese, the fox cannot lose\n", engine.GooseMobSize)
	}

	if a.MobbedAtStart() {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d geese start next to the fox\n", a.Adjacent)
	}

	for _, p := range a.SharedCells {
		fmt.Fprintf(w, "⚠️  WARNING: entities share the starting cell (%d, %d)\n", p.X, p.Y)
	}

	for _, n := range a.IdleReplays {
		fmt.Fprintf(w, "⚠️  WARNING: replay goose %d has no instructions\n", n)
	}
}
