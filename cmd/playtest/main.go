// Package main provides an interactive dialogue playtest REPL. It loads the
// campaign content, builds an in-memory character state, and lets an author
// walk dialogue trees, raise quest events, and inspect state from the
// terminal without a running game server.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/campaign/internal/config"
	"github.com/cory-johannsen/campaign/internal/content"
	"github.com/cory-johannsen/campaign/internal/game/action"
	"github.com/cory-johannsen/campaign/internal/game/condition"
	"github.com/cory-johannsen/campaign/internal/game/dialogue"
	"github.com/cory-johannsen/campaign/internal/game/item"
	"github.com/cory-johannsen/campaign/internal/game/npc"
	"github.com/cory-johannsen/campaign/internal/game/quest"
	"github.com/cory-johannsen/campaign/internal/game/state"
	"github.com/cory-johannsen/campaign/internal/observability"
	"github.com/cory-johannsen/campaign/internal/scripting"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	level := flag.Int("level", 1, "starting character level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	trees, err := content.LoadTreesFromDir(cfg.Content.DialoguesDir)
	if err != nil {
		logger.Fatal("loading dialogues", zap.Error(err))
	}
	dialogueStore, err := dialogue.NewStore(trees)
	if err != nil {
		logger.Fatal("building dialogue store", zap.Error(err))
	}

	quests, err := content.LoadQuestsFromDir(cfg.Content.QuestsDir)
	if err != nil {
		logger.Fatal("loading quests", zap.Error(err))
	}
	questStore, err := quest.NewStore(quests)
	if err != nil {
		logger.Fatal("building quest store", zap.Error(err))
	}

	items := item.NewRegistry()
	if cfg.Content.ItemsDir != "" {
		defs, err := item.LoadDefs(cfg.Content.ItemsDir)
		if err != nil {
			logger.Fatal("loading items", zap.Error(err))
		}
		for _, d := range defs {
			if err := items.Register(d); err != nil {
				logger.Fatal("registering item", zap.Error(err))
			}
		}
	}

	npcs := npc.NewRegistry()
	if cfg.Content.NpcsDir != "" {
		templates, err := npc.LoadTemplates(cfg.Content.NpcsDir)
		if err != nil {
			logger.Fatal("loading npcs", zap.Error(err))
		}
		for _, t := range templates {
			if err := npcs.Register(t); err != nil {
				logger.Fatal("registering npc", zap.Error(err))
			}
		}
	}

	mem := state.NewMemory(*level)
	mem.KnownShops = npcs.ShopIDs()

	var scriptCaller condition.ScriptCaller
	if cfg.Content.ScriptsDir != "" {
		if _, err := os.Stat(cfg.Content.ScriptsDir); err == nil {
			mgr := scripting.NewManager(logger)
			mgr.GetFlag = mem.Flag
			mgr.GetItemCount = mem.ItemCount
			mgr.GetLevel = mem.Level
			mgr.GetQuestStage = func(questID int) int {
				p, ok := mem.Quest(questID)
				if !ok || p.Completed {
					return 0
				}
				return p.Stage
			}
			if err := mgr.Load(cfg.Content.ScriptsDir, cfg.Content.ScriptInstructionLimit); err != nil {
				logger.Fatal("loading scripts", zap.Error(err))
			}
			defer mgr.Close()
			scriptCaller = mgr
		}
	}

	evaluator := condition.NewEvaluator(logger, scriptCaller)
	tracker := quest.NewTracker(questStore, logger)
	dispatcher := action.NewDispatcher(tracker, items, logger)

	fmt.Printf("loaded %d dialogues, %d quests, %d npcs, %d items\n",
		dialogueStore.Len(), questStore.Len(), npcs.Len(), items.Len())
	fmt.Println(`type "help" for commands`)

	repl(dialogueStore, questStore, evaluator, dispatcher, tracker, mem, logger)
}

// repl runs the command loop against a single session slot.
func repl(
	store *dialogue.Store,
	quests *quest.Store,
	evaluator *condition.Evaluator,
	dispatcher *action.Dispatcher,
	tracker *quest.Tracker,
	mem *state.Memory,
	logger *zap.Logger,
) {
	var session *dialogue.Session

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			printHelp()
		case "quit", "exit":
			return

		case "trees":
			for _, t := range store.Trees() {
				fmt.Printf("  %d: %s (%d nodes, repeatable=%v)\n", t.ID, t.SpeakerName, len(t.Nodes), t.Repeatable)
			}
		case "quests":
			for _, q := range quests.Quests() {
				fmt.Printf("  %d: %s (%d stages)\n", q.ID, q.Name, len(q.Stages))
			}

		case "start":
			id, ok := argInt(fields, 1)
			if !ok {
				fmt.Println("usage: start <tree-id>")
				continue
			}
			session = dialogue.NewSession(store, evaluator, dispatcher, mem, logger).WithTracker(tracker)
			if err := session.Start(id); err != nil {
				fmt.Printf("cannot start: %v\n", err)
				session = nil
				continue
			}
			printNode(session)

		case "say":
			if session == nil || session.Status() == dialogue.StatusEnded {
				fmt.Println("no active dialogue")
				continue
			}
			idx, ok := argInt(fields, 1)
			if !ok {
				fmt.Println("usage: say <choice-index>")
				continue
			}
			if err := session.Select(idx); err != nil {
				fmt.Printf("rejected: %v\n", err)
				continue
			}
			if session.Status() == dialogue.StatusEnded {
				fmt.Println("(dialogue ended)")
				session = nil
				continue
			}
			printNode(session)

		case "cancel":
			if session != nil {
				session.Cancel()
				session = nil
				fmt.Println("(dialogue cancelled)")
			}

		case "event":
			handleEvent(fields[1:], tracker, mem)

		case "state":
			printState(mem)

		default:
			fmt.Printf("unknown command %q; type \"help\"\n", fields[0])
		}
	}
}

func printHelp() {
	fmt.Print(`commands:
  trees                     list dialogue trees
  quests                    list quests
  start <tree-id>           begin a dialogue
  say <choice-index>        select a visible choice
  cancel                    abandon the active dialogue
  event kill <monster> [n]  raise a kill event
  event collect <item> [n]  raise a collect event
  event talk <npc>          raise a talk event
  event reach <map> <x> <y> raise a reach event
  state                     dump character state
  quit
`)
}

func printNode(s *dialogue.Session) {
	n := s.CurrentNode()
	if n == nil {
		return
	}
	fmt.Printf("[%s] %s\n", s.Tree().Speaker(n), n.Text)
	visible := s.VisibleChoices()
	if len(visible) == 0 && s.Status() == dialogue.StatusStuck {
		fmt.Println("(no visible choices; dialogue is stuck — cancel to leave)")
		return
	}
	for _, i := range visible {
		fmt.Printf("  %d) %s\n", i, n.Choices[i].Text)
	}
}

func handleEvent(args []string, tracker *quest.Tracker, mem *state.Memory) {
	if len(args) == 0 {
		fmt.Println("usage: event <kill|collect|talk|reach> ...")
		return
	}
	switch args[0] {
	case "kill":
		if len(args) < 2 {
			fmt.Println("usage: event kill <monster> [count]")
			return
		}
		count := 1
		if n, ok := argInt(args, 2); ok {
			count = n
		}
		tracker.Record(mem, quest.Event{Kind: quest.EventKill, Monster: args[1], Count: count})
	case "collect":
		if len(args) < 2 {
			fmt.Println("usage: event collect <item> [count]")
			return
		}
		count := 1
		if n, ok := argInt(args, 2); ok {
			count = n
		}
		mem.AddItem(args[1], count)
		tracker.Record(mem, quest.Event{Kind: quest.EventCollect, Item: args[1], Count: count})
	case "talk":
		if len(args) < 2 {
			fmt.Println("usage: event talk <npc>")
			return
		}
		tracker.Record(mem, quest.Event{Kind: quest.EventTalk, Npc: args[1]})
	case "reach":
		if len(args) < 4 {
			fmt.Println("usage: event reach <map> <x> <y>")
			return
		}
		x, okX := argInt(args, 2)
		y, okY := argInt(args, 3)
		if !okX || !okY {
			fmt.Println("usage: event reach <map> <x> <y>")
			return
		}
		tracker.Record(mem, quest.Event{Kind: quest.EventReach, Map: args[1], X: x, Y: y})
	default:
		fmt.Printf("unknown event kind %q\n", args[0])
	}
}

func printState(mem *state.Memory) {
	fmt.Printf("level %d, currency %d\n", mem.Level(), mem.Currency())

	flags := mem.Flags()
	names := make([]string, 0, len(flags))
	for f := range flags {
		names = append(names, f)
	}
	sort.Strings(names)
	for _, f := range names {
		fmt.Printf("  flag %s\n", f)
	}

	for _, p := range mem.Quests() {
		if p.Completed {
			fmt.Printf("  quest %d: completed (%d times)\n", p.QuestID, p.Completions)
			continue
		}
		fmt.Printf("  quest %d: stage %d, objectives %v\n", p.QuestID, p.Stage, p.ObjectiveCounts)
	}

	if len(mem.OpenedShops) > 0 {
		fmt.Printf("  opened shops: %s\n", strings.Join(mem.OpenedShops, ", "))
	}
}

func argInt(fields []string, i int) (int, bool) {
	if i >= len(fields) {
		return 0, false
	}
	n, err := strconv.Atoi(fields[i])
	if err != nil {
		return 0, false
	}
	return n, true
}
