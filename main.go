package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	env "github.com/samuelfneumann/arcadeq/environment"
	"github.com/samuelfneumann/arcadeq/environment/envconfig"
	"github.com/samuelfneumann/arcadeq/experiment"
	"github.com/samuelfneumann/arcadeq/experiment/tracker"
)

func main() {
	configFile := flag.String("config", "", "JSON experiment configuration "+
		"file, defaults are used if empty")
	episodes := flag.Int("episodes", 0, "number of episodes to run, "+
		"overrides the configuration if positive")
	envName := flag.String("env", "", "environment to run in (Cartpole "+
		"or a Gym ID), overrides the configuration if set")
	returns := flag.String("returns", "", "file to save episodic returns in")
	lengths := flag.String("lengths", "", "file to save episode lengths in")
	resume := flag.String("resume", "", "checkpoint file to initialize the "+
		"agent's networks from, overrides the configuration if set")
	flag.Parse()

	config := experiment.DefaultConfig()
	if *configFile != "" {
		var err error
		config, err = experiment.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("could not load configuration: %v", err)
		}
	}

	if *episodes > 0 {
		config.Episodes = *episodes
	}
	if *resume != "" {
		config.Resume = *resume
	}
	switch *envName {
	case "":
	case string(envconfig.Cartpole):
		config.EnvConfig = envconfig.DefaultCartpole()
	default:
		config.EnvConfig = envconfig.Default()
		config.EnvConfig.GymID = *envName
	}

	e, err := config.CreateExp()
	if err != nil {
		log.Fatalf("could not create experiment: %v", err)
	}
	if closer, ok := e.Environment.(env.Closer); ok {
		defer closer.Close()
	}

	if *returns != "" {
		e.Register(tracker.NewReturn(*returns))
	}
	if *lengths != "" {
		e.Register(tracker.NewEpisodeLength(*lengths))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	runErr := e.Run(ctx)
	fmt.Println("Elapsed:", time.Since(start))

	if err := e.Save(); err != nil {
		log.Printf("could not save data: %v", err)
	}
	if runErr != nil {
		log.Printf("experiment stopped: %v", runErr)
	}
	fmt.Printf("Episodes: %v | Steps: %v | Average score: %.2f\n",
		len(e.Scores()), e.TotalSteps(), e.AverageScore())
}
