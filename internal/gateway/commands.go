package gateway

import (
	"context"
	"fmt"

	"github.com/pauljones0/agriconnect/internal/app"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/session"
)

// Command is one client request. Op selects the action; the other fields
// are read as that action needs them.
type Command struct {
	Op         string               `json:"op"`
	Email      string               `json:"email,omitempty"`
	Password   string               `json:"password,omitempty"`
	Name       string               `json:"name,omitempty"`
	FarmName   string               `json:"farmName,omitempty"`
	Tab        string               `json:"tab,omitempty"`
	ID         string               `json:"id,omitempty"`
	Text       string               `json:"text,omitempty"`
	MediaURL   string               `json:"mediaUrl,omitempty"`
	Query      string               `json:"query,omitempty"`
	Difficulty string               `json:"difficulty,omitempty"`
	Option     string               `json:"option,omitempty"`
	On         bool                 `json:"on,omitempty"`
	Field      models.ImageField    `json:"field,omitempty"`
	Data       []byte               `json:"data,omitempty"`
	Job        *models.Job          `json:"job,omitempty"`
	Patch      *models.ProfilePatch `json:"patch,omitempty"`
}

// slowOps wait on external services and run off the read loop.
var slowOps = map[string]bool{
	"start_quiz":    true,
	"ask_assistant": true,
	"post_job":      true,
}

// dispatch runs cmd against a. Failures have already been reported to the
// client as notices; the returned error is for logging.
func dispatch(ctx context.Context, a *app.App, cmd Command) error {
	switch cmd.Op {
	case "sign_in":
		return a.SignIn(ctx, cmd.Email, cmd.Password)
	case "sign_up":
		return a.SignUp(ctx, session.Registration{Name: cmd.Name, Email: cmd.Email, Password: cmd.Password, FarmName: cmd.FarmName})
	case "sign_out":
		a.SignOut()
	case "select_tab":
		return a.SelectTab(ctx, app.Tab(cmd.Tab))
	case "open_notification":
		return a.OpenNotification(ctx, cmd.ID)

	case "create_post":
		return a.CreatePost(ctx, cmd.Text, cmd.MediaURL)
	case "track_post":
		return a.TrackPost(ctx, cmd.ID)
	case "untrack_post":
		a.UntrackPost(cmd.ID)
	case "toggle_like":
		return a.ToggleLike(ctx, cmd.ID)
	case "comment":
		return a.Comment(ctx, cmd.ID, cmd.Text)
	case "repost":
		return a.Repost(ctx, cmd.ID)

	case "connect":
		return a.Connect(ctx, cmd.ID)
	case "accept_connection":
		return a.AcceptConnection(ctx, cmd.ID)
	case "ignore_connection":
		return a.IgnoreConnection(ctx, cmd.ID)

	case "open_conversation":
		return a.OpenConversation(cmd.ID)
	case "close_conversation":
		a.CloseConversation()
	case "send_message":
		return a.SendMessage(ctx, cmd.Text, cmd.MediaURL)

	case "search":
		return a.Search(cmd.Query)

	case "post_job":
		if cmd.Job == nil {
			return a.Reject(cmd.Op, "Please fill in the job details.")
		}
		return a.PostJob(ctx, *cmd.Job)
	case "toggle_saved_job":
		return a.ToggleSavedJob(ctx, cmd.ID)
	case "filter_jobs":
		return a.FilterJobs(cmd.Query)

	case "begin_edit":
		return a.BeginEdit()
	case "edit_profile":
		if cmd.Patch == nil {
			return nil
		}
		return a.EditProfile(*cmd.Patch)
	case "upload_image":
		return a.UploadImage(ctx, cmd.Field, cmd.Data)
	case "save_profile":
		return a.SaveProfile(ctx)
	case "cancel_edit":
		a.CancelEdit()

	case "start_quiz":
		return a.StartQuiz(ctx, cmd.Difficulty)
	case "answer_quiz":
		return a.AnswerQuiz(cmd.Option)
	case "next_question":
		return a.NextQuestion()
	case "reset_quiz":
		a.ResetQuiz()
	case "quiz_voice":
		a.SetQuizVoice(cmd.On)

	case "ask_assistant":
		a.AskAssistant(ctx, cmd.Text)

	default:
		return a.Reject(cmd.Op, fmt.Sprintf("Unknown command %q.", cmd.Op))
	}
	return nil
}
