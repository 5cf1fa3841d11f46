package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
)

// streamPollInterval is how often the streaming answer is checked for new text.
const streamPollInterval = 100 * time.Millisecond

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the knowledge base a question",
	Long: `Sends a question to the knowledge backend and prints the answer as it
arrives, followed by the cited sources.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// askCategory is the category flag for ask and chat.
var askCategory string

func init() {
	askCmd.Flags().StringVarP(&askCategory, "category", "c", domain.CategoryAll, "Category to search")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryController == nil {
		return errors.New("query controller not configured")
	}

	question := strings.Join(args, " ")
	msg, err := askWithProgress(cmd.Context(), cmd, queryController, question, askCategory)
	if msg != nil {
		printSources(cmd, msg.Sources)
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", explain(err))
	}
	return nil
}

// askWithProgress submits the query and prints the answer text while it
// streams in.
func askWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	qc driving.QueryController,
	question, category string,
) (*domain.ChatMessage, error) {
	after := lastMessageID(qc.Messages())

	type reply struct {
		msg *domain.ChatMessage
		err error
	}
	replyCh := make(chan reply, 1)
	go func() {
		msg, err := qc.Submit(ctx, question, category)
		replyCh <- reply{msg: msg, err: err}
	}()

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	printed := ""
	show := func(content string) {
		if strings.HasPrefix(content, printed) {
			cmd.Print(content[len(printed):])
		} else {
			// The partial text was replaced, e.g. by the fallback answer.
			cmd.Println()
			cmd.Print(content)
		}
		printed = content
	}

	for {
		select {
		case r := <-replyCh:
			if r.msg != nil {
				show(r.msg.Content)
				cmd.Println()
			}
			return r.msg, r.err
		case <-ticker.C:
			if m := streamingReply(qc.Messages(), after); m != nil && m.Content != printed {
				show(m.Content)
			}
		}
	}
}

// streamingReply returns the AI message created after the message with ID after.
func streamingReply(messages []domain.ChatMessage, after int64) *domain.ChatMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].ID <= after {
			return nil
		}
		if messages[i].Sender == domain.SenderAI {
			return &messages[i]
		}
	}
	return nil
}

func lastMessageID(messages []domain.ChatMessage) int64 {
	if len(messages) == 0 {
		return 0
	}
	return messages[len(messages)-1].ID
}

func printSources(cmd *cobra.Command, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(heading("Sources"))
	for i, src := range sources {
		label := src.ID
		if src.Document != nil && src.Document.Title != "" {
			label = src.Document.Title
		}
		cmd.Printf("  [%d] %s %s\n", i+1, label, muted(fmt.Sprintf("(%.2f)", src.Score)))
		if src.Document != nil && src.Document.URL != "" {
			cmd.Printf("      %s\n", muted(src.Document.URL))
		}
	}
}
