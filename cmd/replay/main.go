// Command replay animates saved genomes playing an episode.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snakevo/camera"
	"github.com/pthm-cable/snakevo/config"
	"github.com/pthm-cable/snakevo/renderer"
	"github.com/pthm-cable/snakevo/results"
	"github.com/pthm-cable/snakevo/ui"
)

const inspectorWidth = 240

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	genomesPath := flag.String("genomes", "results/genomes.json", "Genome snapshot to replay")
	rank := flag.Int("rank", 0, "Genome to start with (0 = best)")
	seed := flag.Int64("seed", 0, "Episode seed (0 = evolution seed from config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	genomes, err := results.LoadGenomes(*genomesPath, cfg.Schema())
	if err != nil {
		slog.Error("failed to load genomes", "error", err)
		os.Exit(1)
	}

	episodeSeed := *seed
	if episodeSeed == 0 {
		episodeSeed = cfg.Evolution.Seed
	}
	s, err := newSession(cfg, genomes, episodeSeed)
	if err == nil {
		err = s.load(*rank)
	}
	if err != nil {
		slog.Error("failed to start replay", "error", err)
		os.Exit(1)
	}
	slog.Info("replaying", "genomes", len(genomes), "rank", s.rank, "seed", episodeSeed)

	arenaW := cfg.World.Width * cfg.Screen.Scale
	arenaH := cfg.World.Height * cfg.Screen.Scale
	screenW := int32(arenaW) + inspectorWidth
	screenH := int32(arenaH) + ui.HUDHeight

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(screenW, screenH, "snakevo replay")
	defer rl.CloseWindow()
	rl.SetTargetFPS(cfg.Screen.FPS)

	cam := camera.New(arenaW, arenaH, ui.HUDHeight, cfg.World.Width, cfg.World.Height)
	board := renderer.NewBoard(cam, cfg.World.Width, cfg.World.Height)
	particles := renderer.NewParticleRenderer(episodeSeed)
	hud := ui.NewHUD()
	inspector := ui.NewInspector(int32(arenaW), ui.HUDHeight, inspectorWidth)

	for !rl.WindowShouldClose() {
		if rl.IsWindowResized() {
			w := float64(rl.GetScreenWidth() - inspectorWidth)
			h := float64(rl.GetScreenHeight() - ui.HUDHeight)
			cam.Resize(w, h)
			inspector.SetPosition(int32(w), ui.HUDHeight)
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			cam.ZoomBy(1 + 0.1*float64(wheel))
		}
		if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			d := rl.GetMouseDelta()
			cam.Pan(-float64(d.X), -float64(d.Y))
		}

		act := ui.HandleKeys()
		if act == ui.ActionRestart || act == ui.ActionNext || act == ui.ActionPrev {
			particles.Reset()
		}
		if err := s.apply(act); err != nil {
			slog.Error("replay action failed", "error", err)
		}

		if grew := s.advance(); grew > 0 {
			particles.Burst(s.world.Snake().Head().Pos(), cfg.World.FoodSize, 8*grew)
		}
		particles.Update()

		sn := s.world.Snake()
		if hud.FollowHead {
			cam.Follow(sn.Head().Pos())
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		board.DrawArena()
		board.Draw(s.world.Renderables())
		particles.Draw(board)

		obs := s.world.Observe()
		if hud.ShowEyes && sn.Alive() {
			board.DrawEyes(sn.Head().Pos(), sn.Direction(), sn.Eyes(), obs, board.Diagonal())
		}
		if hud.ShowBrain {
			outputs := sn.Brain().Forward(obs.Flatten())
			inspector.Draw(ui.InspectorData{
				Eyes:     sn.Eyes(),
				Sight:    obs,
				Outputs:  outputs,
				Decision: sn.Brain().Decide(obs.Flatten()),
				Turns:    sn.TurnAngles(),
			})
		}

		clicked := hud.Draw(ui.HUDData{
			Title:     "snakevo",
			Rank:      s.rank,
			Count:     len(genomes),
			Fitness:   fmt.Sprintf("%.1f", s.score()),
			Length:    sn.Len(),
			Ticks:     s.world.Ticks(),
			TimeLimit: s.world.TimeLimit(),
			Alive:     sn.Alive(),
			Paused:    s.paused,
			Speed:     s.speed,
			FPS:       rl.GetFPS(),
			Width:     int32(rl.GetScreenWidth()),
		})
		hud.DrawControls(int32(rl.GetScreenHeight()), "[Space] pause  [R] restart  [</>] speed  [Left/Right] genome  wheel zoom  right-drag pan")

		rl.EndDrawing()

		if clicked != ui.ActionNone {
			if clicked != ui.ActionTogglePause {
				particles.Reset()
			}
			if err := s.apply(clicked); err != nil {
				slog.Error("replay action failed", "error", err)
			}
		}
	}
}
