// Command replay runs a script of git commands against a fresh session or a
// scenario and prints what a learner would have seen.
//
//	replay -scenario push -export /tmp/out script.txt
//
// Lines starting with # and blank lines are skipped. The script is read from
// stdin when no file is given.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kurobon/explaingit/internal/config"
	"github.com/kurobon/explaingit/internal/git/commands"
	"github.com/kurobon/explaingit/internal/gitbridge"
	"github.com/kurobon/explaingit/internal/scenario"
	"github.com/kurobon/explaingit/internal/state"
)

const sessionID = "replay"

func main() {
	scenarioID := flag.String("scenario", "", "start from this scenario")
	scenarioDir := flag.String("scenarios", "", "extra scenario directory")
	exportDir := flag.String("export", "", "write the final local repository as a git repository")
	keepGoing := flag.Bool("k", false, "keep going after a failed command")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	in := io.Reader(os.Stdin)
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal().Err(err).Msg("open script")
		}
		defer f.Close()
		in = f
	}

	sm, err := newSessionManager(*scenarioDir)
	if err != nil {
		log.Fatal().Err(err).Msg("setup")
	}
	if _, err := sm.CreateSession(sessionID); err != nil {
		log.Fatal().Err(err).Msg("create session")
	}
	if *scenarioID != "" {
		sc, err := sm.StartScenario(sessionID, *scenarioID)
		if err != nil {
			log.Fatal().Err(err).Msg("start scenario")
		}
		fmt.Printf("# %s\n# %s\n\n", sc.Title, sc.Description)
	}

	failed, err := replay(context.Background(), sm, in, os.Stdout, *keepGoing)
	if err != nil {
		log.Fatal().Err(err).Msg("read script")
	}

	if *scenarioID != "" {
		result, err := sm.VerifyScenario(sessionID)
		if err == nil {
			printResult(os.Stdout, result)
		}
	}
	if *exportDir != "" {
		session, _ := sm.GetSession(sessionID)
		session.RLock()
		_, ids, err := gitbridge.ExportDir(session.Local, *exportDir)
		session.RUnlock()
		if err != nil {
			log.Fatal().Err(err).Msg("export")
		}
		fmt.Printf("\nexported %d commits to %s\n", len(ids), *exportDir)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func newSessionManager(dir string) (*state.SessionManager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = cfg.ScenarioDir
	}
	loaders := []*scenario.Loader{scenario.Builtin()}
	if dir != "" {
		loaders = append(loaders, scenario.NewDirLoader(dir))
	}
	catalog, err := scenario.NewCatalog(loaders...)
	if err != nil {
		return nil, err
	}

	sm := state.NewSessionManager()
	sm.Scenarios = catalog
	sm.RemoteName = cfg.RemoteName
	return sm, nil
}

// replay runs every command line of in and returns how many failed. It
// stops at the first failure unless keepGoing is set.
func replay(ctx context.Context, sm *state.SessionManager, in io.Reader, out io.Writer, keepGoing bool) (int, error) {
	session, ok := sm.GetSession(sessionID)
	if !ok {
		return 0, fmt.Errorf("session %s not found", sessionID)
	}

	failed := 0
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Fprintf(out, "$ %s\n", line)
		output, err := commands.Run(ctx, session, line)
		if output != "" {
			fmt.Fprintln(out, output)
		}
		if err != nil {
			fmt.Fprintln(out, err)
			failed++
			if !keepGoing {
				break
			}
		}
	}
	return failed, sc.Err()
}

func printResult(out io.Writer, result *scenario.VerificationResult) {
	fmt.Fprintln(out)
	for _, p := range result.Progress {
		mark := "[ ]"
		if p.Passed {
			mark = "[x]"
		}
		fmt.Fprintf(out, "%s %s\n", mark, p.Description)
	}
	if result.Success {
		fmt.Fprintln(out, "solved")
	}
}
