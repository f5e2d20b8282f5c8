package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/careermate/messenger/chat"
	"github.com/careermate/messenger/deeplink"
	"github.com/careermate/messenger/store"
)

// terminal chat client running the sync engine against Firestore
//
// commands: /contacts, /select N, /quit; any other input is sent to the
// active conversation.
func main() {
	me := flag.String("me", "", "identity key (email) to run as")
	link := flag.String("link", "", "optional deep link carrying reference and job parameters")
	flag.Parse()
	if *me == "" {
		log.Fatal("-me is required")
	}

	ctx := context.Background()
	st, err := store.NewFirestore(ctx)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	var intent *deeplink.Intent
	if *link != "" {
		u, err := url.Parse(*link)
		if err != nil {
			log.Fatalf("parsing link: %v", err)
		}
		intent = deeplink.FromURL(u)
	}

	composer := chat.NewComposer(st, *me)

	var engine *chat.Engine
	var pending *deeplink.Intent
	engine = chat.NewEngine(chat.Config{
		Store:  st,
		Me:     *me,
		Intent: intent,
		OnCompose: func(in deeplink.Intent) {
			pending = &in
			fmt.Printf("\nnew conversation with %s (job: %s) - type your message:\n", in.Recipient, in.JobTitle)
		},
		OnUpdate: func() {
			render(engine)
		},
	})
	if err := engine.Start(ctx); err != nil {
		log.Fatalf("starting engine: %v", err)
	}
	defer engine.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit":
			return
		case line == "/contacts":
			for i, p := range engine.Directory() {
				fmt.Printf("%d: %s <%s> (%s)\n", i, p.DisplayName, p.Email, p.Role)
			}
		case strings.HasPrefix(line, "/select "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "/select "))
			directory := engine.Directory()
			if err != nil || n < 0 || n >= len(directory) {
				fmt.Println("no such contact")
				continue
			}
			engine.Select(ctx, directory[n])
		case pending != nil:
			if _, err := composer.SendNew(ctx, pending.Recipient, line, pending.JobTitle); err != nil {
				log.Printf("send failed: %v", err)
			}
			pending = nil
		default:
			selected, ok := engine.Selected()
			if !ok {
				fmt.Println("no active conversation; /select one first")
				continue
			}
			if _, err := composer.SendReply(ctx, selected.Email, line); err != nil {
				log.Printf("send failed: %v", err)
			}
		}
	}
}

func render(engine *chat.Engine) {
	selected, ok := engine.Selected()
	if !ok {
		return
	}
	fmt.Printf("\n--- %s <%s> ---\n", selected.DisplayName, selected.Email)
	for _, m := range engine.Thread() {
		fmt.Printf("[%s] %s: %s\n", m.Timestamp.Format("15:04"), m.From, m.Text)
	}
	fmt.Print("> ")
}
