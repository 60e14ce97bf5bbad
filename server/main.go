package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/dialogue"
	"github.com/meikuraledutech/dialogue/postgres"
)

func main() {
	session := dialogue.NewSession()

	// Persistence is optional: without DATABASE_URL the editor runs purely
	// in memory and graphs travel as JSON documents.
	var store dialogue.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	app := fiber.New()

	// ── Graph lifecycle ───────────────────────────────────────────────
	app.Post("/graph", func(c fiber.Ctx) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		return c.Status(201).JSON(session.NewGraph(body.Name))
	})

	app.Get("/graph", func(c fiber.Ctx) error {
		return c.JSON(session.Snapshot())
	})

	app.Post("/graph/load", func(c fiber.Ctx) error {
		g, err := session.Load(c.Body())
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(g)
	})

	app.Get("/graph/save", func(c fiber.Ctx) error {
		doc, err := session.Save(c.Query("pretty") == "true")
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set("Content-Type", "application/json")
		return c.Send(doc)
	})

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Post("/graph/nodes", func(c fiber.Ctx) error {
		var body struct {
			NodeType dialogue.NodeType `json:"nodeType"`
			X        float64           `json:"x"`
			Y        float64           `json:"y"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		node := session.AddNode(body.NodeType, dialogue.Position{X: body.X, Y: body.Y})
		return c.Status(201).JSON(node)
	})

	app.Patch("/graph/nodes/:id", func(c fiber.Ctx) error {
		var update dialogue.NodeUpdate
		if err := c.Bind().JSON(&update); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		node := session.UpdateNode(c.Params("id"), update)
		if node == nil {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.JSON(node)
	})

	app.Post("/graph/nodes/:id/clone", func(c fiber.Ctx) error {
		var body struct {
			OffsetX float64 `json:"offsetX"`
			OffsetY float64 `json:"offsetY"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		node := session.CloneNode(c.Params("id"), body.OffsetX, body.OffsetY)
		if node == nil {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.Status(201).JSON(node)
	})

	app.Delete("/graph/nodes/:id", func(c fiber.Ctx) error {
		if !session.RemoveNode(c.Params("id")) {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.SendStatus(204)
	})

	// ── Connections ───────────────────────────────────────────────────
	app.Post("/graph/connections", func(c fiber.Ctx) error {
		var body struct {
			FromNodeID    string `json:"fromNodeId"`
			FromPortIndex int    `json:"fromPortIndex"`
			ToNodeID      string `json:"toNodeId"`
			ToPortIndex   int    `json:"toPortIndex"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		conn := session.AddConnection(body.FromNodeID, body.FromPortIndex, body.ToNodeID, body.ToPortIndex)
		if conn == nil {
			return c.Status(422).JSON(fiber.Map{"error": "connection rejected"})
		}
		return c.Status(201).JSON(conn)
	})

	app.Delete("/graph/connections/:id", func(c fiber.Ctx) error {
		if !session.RemoveConnection(c.Params("id")) {
			return c.Status(404).JSON(fiber.Map{"error": "connection not found"})
		}
		return c.SendStatus(204)
	})

	// ── Validation & export ───────────────────────────────────────────
	app.Get("/graph/validate", func(c fiber.Ctx) error {
		return c.JSON(session.Validate())
	})

	app.Get("/graph/export/engine", func(c fiber.Ctx) error {
		doc, err := session.ExportEngine()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set("Content-Type", "application/json")
		return c.Send(doc)
	})

	app.Get("/graph/export/json", func(c fiber.Ctx) error {
		doc, err := session.ExportJSON(c.Query("pretty") == "true")
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set("Content-Type", "application/json")
		return c.Send(doc)
	})

	// ── Variables ─────────────────────────────────────────────────────
	app.Post("/graph/variables/namespaces", func(c fiber.Ctx) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		return c.Status(201).JSON(session.AddVariableNamespace(body.Name))
	})

	app.Post("/graph/variables", func(c fiber.Ctx) error {
		var body struct {
			Namespace    string                `json:"namespace"`
			Name         string                `json:"name"`
			VariableType dialogue.VariableType `json:"variableType"`
			DefaultValue any                   `json:"defaultValue"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		v := session.AddVariable(body.Namespace, body.Name, body.VariableType, body.DefaultValue)
		if v == nil {
			return c.Status(404).JSON(fiber.Map{"error": "namespace not found"})
		}
		return c.Status(201).JSON(v)
	})

	// ── Characters ────────────────────────────────────────────────────
	app.Post("/graph/characters", func(c fiber.Ctx) error {
		var body struct {
			DisplayName string `json:"displayName"`
			Color       string `json:"color"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		return c.Status(201).JSON(session.AddCharacter(body.DisplayName, body.Color))
	})

	app.Patch("/graph/characters/:id", func(c fiber.Ctx) error {
		var update dialogue.CharacterUpdate
		if err := c.Bind().JSON(&update); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		character := session.UpdateCharacter(c.Params("id"), update)
		if character == nil {
			return c.Status(404).JSON(fiber.Map{"error": "character not found"})
		}
		return c.JSON(character)
	})

	app.Delete("/graph/characters/:id", func(c fiber.Ctx) error {
		if !session.RemoveCharacter(c.Params("id")) {
			return c.Status(404).JSON(fiber.Map{"error": "character not found"})
		}
		return c.SendStatus(204)
	})

	// ── Persistence (when DATABASE_URL is set) ────────────────────────
	if store != nil {
		app.Post("/schema", func(c fiber.Ctx) error {
			if err := store.CreateSchema(c.Context()); err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(fiber.Map{"message": "schema created"})
		})

		app.Delete("/schema", func(c fiber.Ctx) error {
			if err := store.DropSchema(c.Context()); err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(fiber.Map{"message": "schema dropped"})
		})

		app.Post("/graphs", func(c fiber.Ctx) error {
			g := session.Snapshot()
			id, err := store.SaveGraph(c.Context(), g)
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(201).JSON(fiber.Map{"id": id})
		})

		app.Get("/graphs", func(c fiber.Ctx) error {
			infos, err := store.ListGraphs(c.Context())
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(infos)
		})

		app.Post("/graphs/:id/open", func(c fiber.Ctx) error {
			g, err := store.LoadGraph(c.Context(), c.Params("id"))
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			if g == nil {
				return c.Status(404).JSON(fiber.Map{"error": "graph not found"})
			}
			return c.JSON(session.Replace(g))
		})

		app.Delete("/graphs/:id", func(c fiber.Ctx) error {
			err := store.DeleteGraph(c.Context(), c.Params("id"))
			if errors.Is(err, dialogue.ErrGraphNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "graph not found"})
			}
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.SendStatus(204)
		})
	}

	addr := ":3000"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	log.Fatal(app.Listen(addr))
}
