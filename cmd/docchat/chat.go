// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/poiesic/docchat/conversation"
	"github.com/poiesic/docchat/core"
	"github.com/urfave/cli/v2"
)

func chatCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	app, err := openApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	service, err := app.NewConversation()
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	var monitor conversation.Monitor
	if c.Bool("show-standalone") {
		monitor = &printMonitor{out: os.Stderr}
	}
	return runChat(ctx, service, monitor, c.String("question"), os.Stdin, os.Stdout)
}

// runChat answers question and returns, or reads questions from in until
// EOF or "exit" when question is empty. History lives only for the session.
func runChat(ctx context.Context, service *conversation.Service, monitor conversation.Monitor, question string, in io.Reader, out io.Writer) error {
	if question != "" {
		_, err := ask(ctx, service, monitor, []core.Message{{Role: core.RoleUser, Content: question}}, out)
		return err
	}

	var history []core.Message
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		switch q {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "exit", "quit":
			return nil
		}

		turns := append(slices.Clone(history), core.Message{Role: core.RoleUser, Content: q})
		reply, err := ask(ctx, service, monitor, turns, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		} else {
			history = append(turns, core.Message{Role: core.RoleAssistant, Content: reply})
		}
		fmt.Fprint(out, "\n> ")
	}
	return scanner.Err()
}

// ask prints the streamed answer followed by its sources and returns the
// assistant message in wire form, sources included.
func ask(ctx context.Context, service *conversation.Service, monitor conversation.Monitor, turns []core.Message, out io.Writer) (string, error) {
	events, err := service.AskWithMonitor(ctx, turns, monitor)
	if err != nil {
		return "", err
	}

	var answer strings.Builder
	var sources []core.SourceDocument
	for event := range events {
		switch event.Kind {
		case conversation.EventToken:
			answer.WriteString(event.Token)
			fmt.Fprint(out, event.Token)
		case conversation.EventSources:
			sources = event.Sources
		case conversation.EventError:
			fmt.Fprintln(out)
			return "", event.Err
		}
	}
	fmt.Fprintln(out)
	printSources(out, sources)

	data, err := conversation.EncodeSources(sources)
	if err != nil {
		return "", err
	}
	return answer.String() + conversation.SourceDocumentsMarker + string(data), nil
}

func printSources(out io.Writer, sources []core.SourceDocument) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(out, "\nSources:")
	for i, s := range sources {
		if s.Metadata.Page != "" {
			fmt.Fprintf(out, "  [%d] %s (page %s)\n", i+1, s.Metadata.Source, s.Metadata.Page)
		} else {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, s.Metadata.Source)
		}
	}
}

// printMonitor prints the intermediate results of each question.
type printMonitor struct {
	out io.Writer
}

var _ conversation.Monitor = (*printMonitor)(nil)

func (m *printMonitor) Start(turns []core.Message) {
	fmt.Fprintf(m.out, "[%d prior turn(s)]\n", len(turns)-1)
}

func (m *printMonitor) AfterCondense(standalone string) {
	fmt.Fprintf(m.out, "[standalone question: %s]\n", standalone)
}

func (m *printMonitor) AfterRetrieval(sources []core.SourceDocument) {
	fmt.Fprintf(m.out, "[retrieved %d source(s)]\n", len(sources))
}
