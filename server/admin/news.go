package admin

import (
	"context"
	"net/url"

	"github.com/skybiz/skybiz/server/models"
)

type newsInput struct {
	NewsID  *uint  `form:"news_id"`
	Message string `form:"message" validate:"required,max=500"`

	// nil when the form has no is_active field
	IsActive *bool `form:"is_active"`
}

func decodeNews(form url.Values) (newsInput, error) {
	verr := &ValidationError{}
	input := newsInput{
		NewsID:  formOptionalID(form, "news_id", verr),
		Message: formString(form, "message"),
	}

	if _, ok := form["is_active"]; ok {
		isActive := formCheckbox(form, "is_active")
		input.IsActive = &isActive
	}

	return input, validateInput(input, verr)
}

// saveNews creates an entry, active unless the form says otherwise, or updates an existing one.
func saveNews(ctx context.Context, env *Env, input newsInput) (Result, error) {
	if input.NewsID == nil {
		news := &models.NewsTicker{Message: input.Message, IsActive: true}
		if input.IsActive != nil {
			news.IsActive = *input.IsActive
		}

		if err := models.CreateNews(news); err != nil {
			return Result{}, err
		}

		return Result{Notice: "News added!"}, nil
	}

	news, err := models.FindNews(*input.NewsID)
	if err != nil {
		return Result{}, notFoundAs(err, "News")
	}

	data := map[string]interface{}{"message": input.Message}
	if input.IsActive != nil {
		data["is_active"] = *input.IsActive
	}

	if err = news.Update(data); err != nil {
		return Result{}, notFoundAs(err, "News")
	}

	return Result{Notice: "News updated!"}, nil
}

func deleteNews(ctx context.Context, env *Env, input idInput) (Result, error) {
	if err := models.DeleteNews(input.ID); err != nil {
		return Result{}, notFoundAs(err, "News")
	}

	return Result{Notice: "News deleted!"}, nil
}
