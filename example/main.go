package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/dialogue"
	"github.com/meikuraledutech/dialogue/postgres"
)

func main() {
	g := dialogue.New("Tavern Intro")

	// ── Characters and variables ──────────────────────────────────────
	innkeeper := g.AddCharacter("Old Innkeeper", "#c2703d")
	fmt.Printf("character %s → %s\n", innkeeper.DisplayName, innkeeper.CompositeID.Hex())

	g.AddVariableNamespace("tavern")
	g.AddVariable("tavern", "visited", dialogue.VariableBoolean, false)
	g.AddVariable("tavern", "gold", dialogue.VariableNumber, 20)

	// ── Build a small flow: dialogue → condition → two fragments ──────
	greeting := g.AddNode(dialogue.NodeDialogue, dialogue.Position{X: 100, Y: 100})
	greeting.Data.Dialogue.Speaker = innkeeper.DisplayName
	greeting.Data.Dialogue.Text = "Back again, are you?"

	check := g.AddNode(dialogue.NodeCondition, dialogue.Position{X: 420, Y: 100})
	check.Data.Script.Expression = "tavern.visited == true"

	warm := g.AddNode(dialogue.NodeDialogueFragment, dialogue.Position{X: 740, Y: 40})
	warm.Data.Dialogue.Text = "The usual, then."

	cold := g.AddNode(dialogue.NodeDialogueFragment, dialogue.Position{X: 740, Y: 180})
	cold.Data.Dialogue.Text = "First time here? Sit anywhere."

	g.AddConnection(greeting.ID, 0, check.ID, 0)
	g.AddConnection(check.ID, 0, warm.ID, 0) // True
	g.AddConnection(check.ID, 1, cold.ID, 0) // False

	// ── Validate ──────────────────────────────────────────────────────
	report := dialogue.Validate(g)
	fmt.Printf("\nvalid: %v, errors: %d, warnings: %d\n",
		report.IsValid, len(report.Errors), len(report.Warnings))
	for _, w := range report.Warnings {
		fmt.Printf("  [%s] %s\n", w.Code, w.Message)
	}

	// ── Export for the engine ─────────────────────────────────────────
	doc, err := dialogue.MarshalExport(dialogue.BuildExport(g), true)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Printf("\nengine export (%d bytes):\n", len(doc))
	fmt.Println(string(doc))

	// ── Optional: persist to PostgreSQL ───────────────────────────────
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var store dialogue.Store = postgres.New(pool)

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	id, err := store.SaveGraph(ctx, g)
	if err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Printf("\nsaved graph %s\n", id)

	loaded, err := store.LoadGraph(ctx, id)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	fmt.Println("loaded graph:")
	printJSON(loaded)

	if err := store.DeleteGraph(ctx, id); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("graph deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
