package cli

import (
	"bufio"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Reads questions from standard input, one per line, and streams each
answer. Lines starting with a slash are commands:

  /history       show the conversation
  /delete [id]   remove one message
  /clear         remove all messages
  /quit          leave`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&askCategory, "category", "c", domain.CategoryAll, "Category to search")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryController == nil {
		return errors.New("query controller not configured")
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	cmd.Println(muted("Type a question, or /quit to leave."))
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/history":
			printHistory(cmd, queryController.Messages())
		case line == "/clear":
			queryController.ClearConversation()
			cmd.Println(muted("Conversation cleared."))
		case strings.HasPrefix(line, "/delete"):
			chatDelete(cmd, strings.TrimSpace(strings.TrimPrefix(line, "/delete")))
		case strings.HasPrefix(line, "/"):
			cmd.Println(warning("Unknown command " + line))
		default:
			msg, err := askWithProgress(cmd.Context(), cmd, queryController, line, askCategory)
			if msg != nil {
				printSources(cmd, msg.Sources)
			}
			if err != nil {
				cmd.Println(failure(explain(err).Error()))
			}
		}
	}
}

func chatDelete(cmd *cobra.Command, arg string) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		cmd.Println(warning("Usage: /delete [id]"))
		return
	}
	if !queryController.DeleteMessage(id) {
		cmd.Println(warning("No message " + arg))
		return
	}
	cmd.Println(muted("Deleted message " + arg))
}

func printHistory(cmd *cobra.Command, messages []domain.ChatMessage) {
	if len(messages) == 0 {
		cmd.Println(muted("No messages."))
		return
	}
	for _, m := range messages {
		who := "you"
		if m.Sender == domain.SenderAI {
			who = "kb "
		}
		cmd.Printf("%s %s %s\n", muted(strconv.FormatInt(m.ID, 10)), heading(who), m.Content)
	}
}
