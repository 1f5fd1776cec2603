package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/marrowvale/vanguard-client/internal/game"
)

func main() {
	var seed int64
	var latencyMs int

	flag.Int64Var(&seed, "seed", 42, "RNG seed for the stub server")
	flag.IntVar(&latencyMs, "latency", 300, "stub server response latency in milliseconds")
	flag.Parse()

	g := game.New(seed)
	g.SetLatency(time.Duration(latencyMs) * time.Millisecond)

	ebiten.SetWindowTitle("Vanguard Client")
	ebiten.SetWindowSize(1292, 704)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
