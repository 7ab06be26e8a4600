// Package main provides the campaign content validator CLI. It parses every
// dialogue tree and quest under the configured content directories, runs the
// static validator, and prints each finding. The exit code is non-zero when
// any finding is an error, so the tool can gate content packaging in CI.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cory-johannsen/campaign/internal/content"
	"github.com/cory-johannsen/campaign/internal/game/item"
	"github.com/cory-johannsen/campaign/internal/game/npc"
	"github.com/cory-johannsen/campaign/internal/game/validator"
)

func main() {
	dialoguesDir := flag.String("dialogues", "content/dialogues", "path to dialogue tree directory")
	questsDir := flag.String("quests", "content/quests", "path to quest directory")
	npcsDir := flag.String("npcs", "", "optional path to NPC template directory")
	itemsDir := flag.String("items", "", "optional path to item definition directory")
	warningsAsErrors := flag.Bool("strict", false, "treat warnings as errors")
	flag.Parse()

	start := time.Now()

	trees, err := content.ParseTreesFromDir(*dialoguesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	quests, err := content.ParseQuestsFromDir(*questsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	var npcReg *npc.Registry
	if *npcsDir != "" {
		templates, err := npc.LoadTemplates(*npcsDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		npcReg = npc.NewRegistry()
		for _, t := range templates {
			if err := npcReg.Register(t); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(2)
			}
		}
	}

	var itemReg *item.Registry
	if *itemsDir != "" {
		defs, err := item.LoadDefs(*itemsDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		itemReg = item.NewRegistry()
		for _, d := range defs {
			if err := itemReg.Register(d); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(2)
			}
		}
	}

	refs := validator.RefsFromRegistries(npcReg, itemReg)
	findings := validator.Validate(trees, quests, refs)

	warnings, errors := 0, 0
	for _, f := range findings {
		fmt.Println(f)
		if f.Severity == validator.SeverityError {
			errors++
		} else {
			warnings++
		}
	}

	fmt.Printf("validated %d dialogues, %d quests: %d errors, %d warnings [%s]\n",
		len(trees), len(quests), errors, warnings, time.Since(start).Round(time.Millisecond))

	if errors > 0 || (*warningsAsErrors && warnings > 0) {
		os.Exit(1)
	}
}
