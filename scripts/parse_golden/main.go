// Command parse_golden replays pasted course tables through the parser and
// grade engine and compares the result against checked-in golden files.
//
//	go run ./scripts/parse_golden -dir scripts/parse_golden/testdata/pastes
//	go run ./scripts/parse_golden -dir scripts/parse_golden/testdata/pastes -update
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/internal/parser"
)

const goldenSuffix = ".golden.json"

type snapshot struct {
	Family   parser.Family    `json:"family"`
	Courses  []models.Course  `json:"ramos"`
	Warnings []parser.Warning `json:"warnings"`
}

type comparison struct {
	Name     string
	Family   parser.Family
	Courses  int
	Match    bool
	Created  bool
	Error    error
	Duration time.Duration
}

func main() {
	var (
		dir       string
		threshold float64
		update    bool
	)

	flag.StringVar(&dir, "dir", filepath.Join("scripts", "parse_golden", "testdata", "pastes"), "Directory holding *.txt pastes and their golden files")
	flag.Float64Var(&threshold, "threshold", grading.DefaultThreshold, "Passing threshold")
	flag.BoolVar(&update, "update", false, "Rewrite golden files with the current output")
	flag.Parse()

	pastes, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		log.Fatalf("failed to list pastes: %v", err)
	}
	if len(pastes) == 0 {
		log.Fatalf("no *.txt pastes found in %s", dir)
	}
	sort.Strings(pastes)

	engine := grading.NewEngine(threshold)
	var (
		comparisons []comparison
		mismatches  int
	)
	for _, paste := range pastes {
		comp := check(engine, paste, update)
		if comp.Error != nil || !comp.Match {
			mismatches++
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Pastes: %d, Mismatches: %d\n", len(comparisons), mismatches)
	if mismatches > 0 {
		os.Exit(1)
	}
}

func check(engine grading.Engine, paste string, update bool) comparison {
	comp := comparison{Name: filepath.Base(paste)}

	raw, err := os.ReadFile(paste)
	if err != nil {
		comp.Error = fmt.Errorf("read paste: %w", err)
		return comp
	}

	start := time.Now()
	got := render(engine, string(raw))
	comp.Duration = time.Since(start)
	comp.Family = got.Family
	comp.Courses = len(got.Courses)

	current, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		comp.Error = fmt.Errorf("encode result: %w", err)
		return comp
	}

	golden := strings.TrimSuffix(paste, ".txt") + goldenSuffix
	expected, err := os.ReadFile(golden)
	switch {
	case os.IsNotExist(err) && !update:
		comp.Error = fmt.Errorf("missing golden %s, rerun with -update", filepath.Base(golden))
		return comp
	case update:
		if err := os.WriteFile(golden, append(current, '\n'), 0o644); err != nil {
			comp.Error = fmt.Errorf("write golden: %w", err)
			return comp
		}
		comp.Match, comp.Created = true, true
		return comp
	case err != nil:
		comp.Error = fmt.Errorf("read golden: %w", err)
		return comp
	}

	comp.Match = bodiesEqual(current, expected)
	return comp
}

// render zeroes generated IDs so golden files stay stable across runs.
func render(engine grading.Engine, raw string) snapshot {
	courses := engine.ComputeAll(parser.Parse(raw))
	for i := range courses {
		courses[i].ID = fmt.Sprintf("ramo-%d", i+1)
		for j := range courses[i].Unidades {
			unit := &courses[i].Unidades[j]
			unit.ID = fmt.Sprintf("unidad-%d", j+1)
			for k := range unit.Evaluaciones {
				unit.Evaluaciones[k].ID = fmt.Sprintf("eval-%d", k+1)
			}
		}
	}
	warnings := parser.Validate(courses)
	if warnings == nil {
		warnings = []parser.Warning{}
	}
	return snapshot{Family: parser.Detect(raw), Courses: courses, Warnings: warnings}
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(aj, bj)
}

func printReport(results []comparison) {
	fmt.Println("Parser Golden Report")
	fmt.Println("====================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Error != nil:
			status = "ERROR"
		case res.Created:
			status = "WRITTEN"
		case !res.Match:
			status = "DIFF"
		}
		fmt.Printf("[%s] %s\n", status, res.Name)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Family: %s | Courses: %d | %s\n", res.Family, res.Courses, res.Duration)
	}
}
