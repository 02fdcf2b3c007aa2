package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"smarthealth/internal/agent"
	"smarthealth/internal/checker"
	"smarthealth/internal/history"
	"smarthealth/internal/report"
)

// ui is the terminal frontend. It renders the active screen from store
// snapshots and dispatches only the callbacks that screen exposes; all
// session logic lives in the store.
type ui struct {
	store   *checker.Store
	history *history.Source
	reports *report.Service
	speech  agent.SpeechClient
	in      *bufio.Scanner
	out     io.Writer
}

func newUI(store *checker.Store, hist *history.Source, reports *report.Service, speech agent.SpeechClient, in io.Reader, out io.Writer) *ui {
	return &ui{
		store:   store,
		history: hist,
		reports: reports,
		speech:  speech,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

func (u *ui) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		snap := u.store.State()
		u.render(snap)

		line, ok := u.readLine()
		if !ok {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "/quit" || line == "/q" {
			return nil
		}
		u.dispatch(ctx, snap, line)
	}
}

func (u *ui) readLine() (string, bool) {
	fmt.Fprint(u.out, "> ")
	if !u.in.Scan() {
		return "", false
	}
	return u.in.Text(), true
}

func (u *ui) alert(format string, args ...any) {
	fmt.Fprintf(u.out, "\n[!] "+format+"\n", args...)
}

func (u *ui) render(snap checker.Snapshot) {
	fmt.Fprintln(u.out)
	switch snap.Screen {
	case checker.ScreenWelcome:
		fmt.Fprintln(u.out, "=== SmartHealth AI ===")
		fmt.Fprintln(u.out, "Your personal symptom checker. This is not a diagnostic tool.")
		fmt.Fprintln(u.out, "Press Enter to start, or /quit to exit.")
	case checker.ScreenChat:
		fmt.Fprintln(u.out, "--- Chat ---")
		for _, m := range snap.Messages {
			prefix := "AI"
			if m.Sender == checker.SenderUser {
				prefix = "You"
			}
			fmt.Fprintf(u.out, "%s: %s\n", prefix, m.Text)
		}
		fmt.Fprintln(u.out, "Describe your symptoms, /history for past visits, /voice <wav-file> to speak.")
	case checker.ScreenConditions:
		fmt.Fprintln(u.out, "--- Potential Conditions ---")
		for i, c := range snap.Conditions {
			fmt.Fprintf(u.out, "%d. %s  [%s, %d matching symptoms]\n", i+1, c.Name, c.Severity, c.MatchingSymptoms)
		}
		fmt.Fprintln(u.out, "Enter a number for details, (a)dvice, (b)ack, (r)estart.")
	case checker.ScreenHistory:
		fmt.Fprintln(u.out, "--- Patient History ---")
		for i, e := range u.history.Entries() {
			fmt.Fprintf(u.out, "%d. %s — %s (%s)\n", i+1, e.Date, e.Condition, e.Severity)
		}
		fmt.Fprintln(u.out, "Enter a number for details, (b)ack.")
	case checker.ScreenConditionDetail:
		fmt.Fprintln(u.out, "--- Condition Detail ---")
		if snap.SelectedCondition == nil {
			fmt.Fprintln(u.out, "No condition selected.")
		} else {
			c := snap.SelectedCondition
			fmt.Fprintf(u.out, "%s  [%s]\n", c.Name, c.Severity)
			if snap.DetailLoading {
				fmt.Fprintln(u.out, "Loading details...")
			} else if c.Description != "" {
				fmt.Fprintln(u.out, c.Description)
			}
		}
		fmt.Fprintln(u.out, "(b)ack, (e)xport PDF, (s)hare.")
	case checker.ScreenAdvice:
		fmt.Fprintln(u.out, "--- General Advice ---")
		fmt.Fprintln(u.out, snap.Advice)
		fmt.Fprintln(u.out, "(b)ack, (p)repare for doctor visit, (r)estart.")
	case checker.ScreenDoctorPrep:
		fmt.Fprintln(u.out, "--- Doctor Visit Preparation ---")
		if snap.PrepGuide != nil {
			printSection(u.out, "Questions to ask", snap.PrepGuide.Questions)
			printSection(u.out, "What to prepare", snap.PrepGuide.Preparation)
			printSection(u.out, "What to expect", snap.PrepGuide.Expectations)
		}
		fmt.Fprintln(u.out, "(b)ack, (r)estart.")
	}
}

func printSection(out io.Writer, title string, items []string) {
	fmt.Fprintf(out, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}

func (u *ui) dispatch(ctx context.Context, snap checker.Snapshot, line string) {
	switch snap.Screen {
	case checker.ScreenWelcome:
		u.store.Start()
	case checker.ScreenChat:
		u.dispatchChat(ctx, line)
	case checker.ScreenConditions:
		u.dispatchConditions(ctx, snap, line)
	case checker.ScreenHistory:
		u.dispatchHistory(ctx, line)
	case checker.ScreenConditionDetail:
		u.dispatchDetail(snap, line)
	case checker.ScreenAdvice:
		u.dispatchAdvice(ctx, line)
	case checker.ScreenDoctorPrep:
		u.dispatchPrep(line)
	}
}

func (u *ui) dispatchChat(ctx context.Context, line string) {
	switch {
	case line == "":
	case line == "/history":
		u.store.ShowHistory()
	case strings.HasPrefix(line, "/voice "):
		u.sendVoice(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/voice ")))
	default:
		// analysis failures are narrated inline in the transcript
		_ = u.store.SubmitSymptoms(ctx, line)
	}
}

func (u *ui) sendVoice(ctx context.Context, path string) {
	if u.speech == nil {
		u.alert("Speech input is not configured (set STT_SERVICE_URL).")
		return
	}
	audio, err := os.ReadFile(path)
	if err != nil {
		u.alert("Could not read audio file: %v", err)
		return
	}
	text, err := u.speech.Transcribe(ctx, audio)
	if err != nil {
		u.alert("Could not transcribe audio: %v", err)
		return
	}
	if text == "" {
		// silence is not an error and sends nothing
		return
	}
	fmt.Fprintf(u.out, "(transcribed) %s\n", text)
	_ = u.store.SubmitSymptoms(ctx, text)
}

func (u *ui) dispatchConditions(ctx context.Context, snap checker.Snapshot, line string) {
	switch line {
	case "a":
		if err := u.store.ReviewAdvice(ctx); err != nil {
			u.alert("Could not get advice: %v", err)
		}
	case "b":
		u.store.Back()
	case "r":
		u.store.Restart()
	default:
		if i, err := strconv.Atoi(line); err == nil && i >= 1 && i <= len(snap.Conditions) {
			// detail failures surface on the detail screen itself
			_ = u.store.SelectCondition(ctx, snap.Conditions[i-1], checker.ScreenConditions)
		}
	}
}

func (u *ui) dispatchHistory(ctx context.Context, line string) {
	entries := u.history.Entries()
	switch line {
	case "b":
		u.store.Back()
	default:
		if i, err := strconv.Atoi(line); err == nil && i >= 1 && i <= len(entries) {
			_ = u.store.SelectHistoryEntry(ctx, entries[i-1])
		}
	}
}

func (u *ui) dispatchDetail(snap checker.Snapshot, line string) {
	switch line {
	case "b":
		u.store.Back()
	case "e":
		if snap.SelectedCondition == nil {
			return
		}
		path, err := u.reports.Export(*snap.SelectedCondition)
		if err != nil {
			u.alert("Could not export: %v", err)
			return
		}
		fmt.Fprintf(u.out, "Exported to %s\n", path)
	case "s":
		if snap.SelectedCondition == nil {
			return
		}
		if err := u.reports.Share(*snap.SelectedCondition); err != nil {
			u.alert("Could not share: %v", err)
		}
	}
}

func (u *ui) dispatchAdvice(ctx context.Context, line string) {
	switch line {
	case "b":
		u.store.Back()
	case "p":
		if err := u.store.PrepareForVisit(ctx); err != nil {
			u.alert("Could not generate preparation guide: %v", err)
		}
	case "r":
		u.store.Restart()
	}
}

func (u *ui) dispatchPrep(line string) {
	switch line {
	case "b":
		u.store.Back()
	case "r":
		u.store.Restart()
	}
}
