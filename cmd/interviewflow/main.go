package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Rahul-150705/interviewflow-pro/internal/codeexec"
	"github.com/Rahul-150705/interviewflow-pro/internal/config"
	"github.com/Rahul-150705/interviewflow-pro/internal/gateway"
	"github.com/Rahul-150705/interviewflow-pro/internal/identity"
	"github.com/Rahul-150705/interviewflow-pro/internal/metrics"
	"github.com/Rahul-150705/interviewflow-pro/internal/models"
	"github.com/Rahul-150705/interviewflow-pro/internal/report"
	"github.com/Rahul-150705/interviewflow-pro/internal/session"
	"github.com/Rahul-150705/interviewflow-pro/internal/speech"
)

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	gw     *gateway.Client
	store  *identity.Store

	ctrl  *session.Controller
	panel *codeexec.Panel
	voice *session.VoiceFlow
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	gw := gateway.NewClient(cfg.BaseURL, cfg.RequestTimeout, logger)
	store := identity.NewStore(cfg.CredentialsFile)

	if stored, err := store.Load(); err != nil {
		logger.Warn("Could not read stored credentials", zap.Error(err))
	} else if stored != nil {
		if stored.Expired(time.Now()) {
			fmt.Println("Stored session has expired, please log in again.")
			if err := store.Clear(); err != nil {
				logger.Warn("Could not clear expired credentials", zap.Error(err))
			}
		} else {
			gw.SetSession(stored)
			fmt.Printf("Logged in as %s\n", stored.Email)
		}
	}

	if cfg.DebugAddr != "" {
		server := metrics.NewDebugServer(cfg.DebugAddr, logger)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Debug listener failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, logger: logger, gw: gw, store: store}
	a.run(ctx, os.Stdin)

	if a.ctrl != nil {
		a.ctrl.Close()
	}
	logger.Info("Client shutting down")
}

func (a *app) run(ctx context.Context, in *os.File) {
	fmt.Println("InterviewFlow — type 'help' for commands")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		name, args := splitCommand(scanner.Text())
		if name == "" {
			continue
		}
		if name == "exit" || name == "quit" {
			return
		}
		if err := a.dispatch(ctx, name, args, scanner); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

// splitCommand separates the command name from its arguments.
func splitCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func (a *app) dispatch(ctx context.Context, name string, args []string, scanner *bufio.Scanner) error {
	switch name {
	case "help":
		printHelp()
		return nil
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		a.gw.SetSession(nil)
		return a.store.Clear()
	case "start":
		return a.start(ctx, args)
	case "question":
		return a.showQuestion()
	case "answer":
		return a.answer(args)
	case "submit":
		return a.submit(ctx)
	case "next":
		return a.withSession(func() error { return a.ctrl.Next() })
	case "prev":
		return a.withSession(func() error { return a.ctrl.Previous() })
	case "skip":
		return a.withSession(func() error { return a.ctrl.Skip() })
	case "goto":
		return a.jump(args)
	case "lang":
		return a.setLanguage(args)
	case "code":
		return a.editCode(scanner)
	case "stdin":
		return a.withPanel(func() error {
			a.panel.SetStdin(strings.Join(args, " "))
			return nil
		})
	case "run":
		return a.runCode(ctx)
	case "history":
		return a.history(ctx)
	case "report":
		return a.report(ctx, args)
	case "resume":
		return a.uploadResume(ctx, args)
	case "analyze":
		return a.analyzeResume(ctx, args)
	case "voice":
		return a.voiceCommand(ctx, args)
	case "chat":
		return a.chat(ctx, args)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", name)
	}
}

func printHelp() {
	fmt.Println(`Commands:
  login <email> <password>        authenticate and store the session
  register <name> <email> <pw>    create an account
  logout                          clear the stored session
  start <round> <job title>       begin an interview (behavioral|coding|dsa|system-design)
  question                        show the current question and phase
  answer <text>                   set the answer for the current question
  submit                          grade the current answer
  next | prev | skip | goto <n>   navigate questions
  lang <language>                 coding rounds: select a language
  code                            coding rounds: enter code, finish with a single '.'
  stdin <text>                    coding rounds: set program input
  run                             coding rounds: execute remotely
  history                         list past interviews
  report <interview-id>           download the PDF report
  voice <read|begin|finish|skip>  hands-free flow when speech is available
  resume <path>                   upload a resume
  analyze <path> [job desc]       run the resume analyzer
  chat <message>                  voice-interview chat
  exit`)
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <email> <password>")
	}
	sess, err := a.gw.Login(ctx, &models.LoginRequest{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	if err := a.store.Save(sess); err != nil {
		a.logger.Warn("Could not persist credentials", zap.Error(err))
	}
	fmt.Printf("Logged in as %s\n", sess.Email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: register <name> <email> <password>")
	}
	sess, err := a.gw.Register(ctx, &models.RegisterRequest{Name: args[0], Email: args[1], Password: args[2]})
	if err != nil {
		return err
	}
	if err := a.store.Save(sess); err != nil {
		a.logger.Warn("Could not persist credentials", zap.Error(err))
	}
	fmt.Printf("Registered %s\n", sess.Email)
	return nil
}

func (a *app) start(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: start <round> <job title>")
	}
	round := models.RoundType(args[0])
	req := &models.StartInterviewRequest{
		JobTitle:  strings.Join(args[1:], " "),
		RoundType: round,
		UserID:    userID(a.gw),
	}

	interview, err := a.gw.StartInterview(ctx, req)
	if err != nil {
		return err
	}

	if a.ctrl != nil {
		a.ctrl.Close()
	}
	a.ctrl, err = session.NewController(a.gw, interview, round, a.logger, session.Options{
		TickInterval:  a.cfg.TickInterval,
		AutoSaveDelay: a.cfg.AutoSaveDelay,
		OnComplete:    a.onComplete,
	})
	if err != nil {
		return err
	}

	if round.IsCoding() {
		a.panel = codeexec.NewPanel(a.gw, a.cfg.ExecTimeout, a.logger)
	} else {
		a.panel = nil
	}

	// terminal targets have no speech capability; the voice flow stays
	// wired so a platform provider can be dropped in
	output := speech.NewOutputAdapter(speech.UnsupportedSynthesizer{}, speech.OutputConfig{
		ChunkSize: a.cfg.SpeechChunkSize,
		Gap:       a.cfg.SpeechChunkGap,
	}, a.logger)
	input := speech.NewInputAdapter(speech.UnsupportedRecognizer{}, output, speech.InputConfig{
		RestartLimit: a.cfg.RestartLimit,
	}, a.logger)
	a.voice = session.NewVoiceFlow(a.ctrl, a.gw, input, output, a.logger)

	fmt.Printf("Interview %s started: %d questions for %q\n",
		interview.ID, len(interview.Questions), interview.JobTitle)
	return a.showQuestion()
}

func (a *app) onComplete(bundle models.Bundle) {
	summary := report.Summarize(bundle)
	fmt.Printf("\nInterview complete — %d/%d answered\n", summary.Graded, summary.Total)
	fmt.Printf("Overall score: %d (%s)\n", summary.Overall, summary.Band)
	fmt.Printf("Excellent: %d  Good: %d  Needs work: %d\n",
		summary.Excellent, summary.Good, summary.Poor)
}

func (a *app) withSession(fn func() error) error {
	if a.ctrl == nil {
		return errors.New("no interview in progress, use 'start'")
	}
	if err := fn(); err != nil {
		return err
	}
	if a.ctrl.Phase() != models.PhaseComplete {
		return a.showQuestion()
	}
	return nil
}

func (a *app) withPanel(fn func() error) error {
	if a.panel == nil {
		return errors.New("no coding round in progress")
	}
	return fn()
}

func (a *app) showQuestion() error {
	if a.ctrl == nil {
		return errors.New("no interview in progress, use 'start'")
	}
	q := a.ctrl.Question()
	fmt.Printf("[%d/%d] (%s, %ds) %s\n",
		a.ctrl.Index()+1, a.ctrl.QuestionCount(), a.ctrl.Phase(), a.ctrl.Elapsed(), q.Text)

	if slot, err := a.ctrl.Slot(a.ctrl.Index()); err == nil && slot.Feedback != nil {
		fmt.Printf("Score %d: %s\n", slot.Feedback.Score, slot.Feedback.Explanation)
	}
	return nil
}

func (a *app) answer(args []string) error {
	if a.ctrl == nil {
		return errors.New("no interview in progress, use 'start'")
	}
	a.ctrl.SetAnswer(strings.Join(args, " "))
	return nil
}

func (a *app) submit(ctx context.Context) error {
	if a.ctrl == nil {
		return errors.New("no interview in progress, use 'start'")
	}

	// coding rounds submit the panel buffer
	if a.panel != nil {
		if _, err := a.panel.SubmitPayload(); err != nil {
			return err
		}
		a.ctrl.SetLanguage(a.panel.Language())
		a.ctrl.SetAnswer(a.panel.Code())
	}

	feedback, err := a.ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Score %d: %s\n", feedback.Score, feedback.Explanation)
	return nil
}

func (a *app) jump(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: goto <question number>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.New("usage: goto <question number>")
	}
	return a.withSession(func() error { return a.ctrl.JumpTo(n - 1) })
}

func (a *app) setLanguage(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: lang <%s>", strings.Join(codeexec.SupportedLanguagesList(), "|"))
	}
	return a.withPanel(func() error { return a.panel.SetLanguage(args[0]) })
}

func (a *app) editCode(scanner *bufio.Scanner) error {
	return a.withPanel(func() error {
		fmt.Println("Enter code, finish with a single '.' on its own line:")
		var lines []string
		for scanner.Scan() {
			line := scanner.Text()
			if line == "." {
				break
			}
			lines = append(lines, line)
		}
		a.panel.SetCode(strings.Join(lines, "\n"))
		return nil
	})
}

func (a *app) runCode(ctx context.Context) error {
	return a.withPanel(func() error {
		result, err := a.panel.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%.2fs)\n", result.Status, result.Elapsed.Seconds())
		if result.Output != "" {
			fmt.Println(result.Output)
		}
		if result.Detail != "" {
			fmt.Println(result.Detail)
		}
		return nil
	})
}

func (a *app) history(ctx context.Context) error {
	entries, err := a.gw.History(ctx, userID(a.gw))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No past interviews.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-30s %-14s score %d\n", e.ID, e.JobTitle, e.RoundType, e.OverallScore)
	}
	return nil
}

func (a *app) report(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: report <interview-id>")
	}
	path, err := report.Save(ctx, a.gw, args[0], ".")
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

func (a *app) uploadResume(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: resume <path>")
	}
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	upload, err := a.gw.UploadResume(ctx, file.Name(), file, userID(a.gw))
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %s (%s)\n", upload.FileName, upload.ID)
	return nil
}

func (a *app) analyzeResume(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: analyze <path> [job description]")
	}
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	analysis, err := a.gw.AnalyzeResume(ctx, file.Name(), file, strings.Join(args[1:], " "), userID(a.gw))
	if err != nil {
		return err
	}
	fmt.Printf("Resume score: %d\n", analysis.OverallScore)
	for _, s := range analysis.Strengths {
		fmt.Printf("  + %s\n", s)
	}
	for _, s := range analysis.Improvements {
		fmt.Printf("  - %s\n", s)
	}
	return nil
}

func (a *app) voiceCommand(ctx context.Context, args []string) error {
	if a.voice == nil {
		return errors.New("no interview in progress, use 'start'")
	}
	if !a.voice.Supported() {
		return errors.New("no speech capability on this platform")
	}
	if len(args) != 1 {
		return errors.New("usage: voice <read|begin|finish|skip>")
	}
	switch args[0] {
	case "read":
		return a.voice.ReadQuestion()
	case "begin":
		return a.voice.BeginAnswer()
	case "finish":
		feedback, err := a.voice.FinishAnswer(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Score %d: %s\n", feedback.Score, feedback.Explanation)
		return nil
	case "skip":
		return a.voice.Skip()
	default:
		return errors.New("usage: voice <read|begin|finish|skip>")
	}
}

func (a *app) chat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: chat <message>")
	}
	interviewID := ""
	if a.ctrl != nil {
		interviewID = a.ctrl.InterviewID()
	}
	reply, err := a.gw.VoiceChat(ctx, strings.Join(args, " "), interviewID)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

func userID(gw *gateway.Client) string {
	if sess := gw.Session(); sess != nil {
		return sess.UserID
	}
	return ""
}
