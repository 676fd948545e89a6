package admin

import (
	"context"
	"net/url"

	"github.com/skybiz/skybiz/server/models"
)

type BranchInput struct {
	BranchID    *uint   `form:"branch_id"`
	Name        string  `form:"name" validate:"required,max=100"`
	Address     string  `form:"address" validate:"required,max=200"`
	City        string  `form:"city" validate:"required,max=100"`
	State       string  `form:"state" validate:"required,max=100"`
	Phone       string  `form:"phone" validate:"required,max=30"`
	Email       string  `form:"email" validate:"required,email,max=254"`
	IsActive    bool    `form:"is_active"`
	WebsiteLink *string `form:"website_link" validate:"omitempty,url,max=200"`
}

// DecodeBranch reads and validates a branch form. Website links without a scheme
// are given https:// before validation.
func DecodeBranch(form url.Values) (BranchInput, error) {
	verr := &ValidationError{}
	input := BranchInput{
		BranchID: formOptionalID(form, "branch_id", verr),
		Name:     formString(form, "name"),
		Address:  formString(form, "address"),
		City:     formString(form, "city"),
		State:    formString(form, "state"),
		Phone:    formString(form, "phone"),
		Email:    formString(form, "email"),
		IsActive: formCheckbox(form, "is_active"),
	}

	if link := models.NormalizeWebsiteLink(form.Get("website_link")); link != "" {
		input.WebsiteLink = &link
	}

	return input, validateInput(input, verr)
}

// BranchService is the single place branches are managed, shared by the admin panel
// and the dashboard.
type BranchService struct{}

func (s *BranchService) Add(input BranchInput) (*models.Branch, error) {
	branch := &models.Branch{}
	input.applyTo(branch)

	if err := models.CreateBranch(branch); err != nil {
		return nil, err
	}

	return branch, nil
}

func (s *BranchService) Edit(id uint, input BranchInput) (*models.Branch, error) {
	branch, err := models.FindBranch(id)
	if err != nil {
		return nil, notFoundAs(err, "Branch")
	}

	input.applyTo(branch)
	if err = branch.Save(); err != nil {
		return nil, err
	}

	return branch, nil
}

// Save adds the branch when input has no id, otherwise it edits the existing one.
// The returned notice describes which of the two happened.
func (s *BranchService) Save(input BranchInput) (string, error) {
	if input.BranchID == nil {
		if _, err := s.Add(input); err != nil {
			return "", err
		}
		return "Branch added successfully.", nil
	}

	if _, err := s.Edit(*input.BranchID, input); err != nil {
		return "", err
	}
	return "Branch updated successfully.", nil
}

func (s *BranchService) Delete(id uint) error {
	return notFoundAs(models.DeleteBranch(id), "Branch")
}

func (input BranchInput) applyTo(branch *models.Branch) {
	branch.Name = input.Name
	branch.Address = input.Address
	branch.City = input.City
	branch.State = input.State
	branch.Phone = input.Phone
	branch.Email = input.Email
	branch.IsActive = input.IsActive
	branch.WebsiteLink = input.WebsiteLink
}

// ---------------------------------------------------------------------------------//
// Commands
// --------------------------------------------------------------------------------//

func addBranch(ctx context.Context, env *Env, input BranchInput) (Result, error) {
	if _, err := env.Branches.Add(input); err != nil {
		return Result{}, err
	}

	return Result{Notice: "Branch added successfully."}, nil
}

func editBranch(ctx context.Context, env *Env, input BranchInput) (Result, error) {
	if input.BranchID == nil {
		return Result{}, &ValidationError{Fields: []FieldError{{"branch_id", "This field is required."}}}
	}

	if _, err := env.Branches.Edit(*input.BranchID, input); err != nil {
		return Result{}, err
	}

	return Result{Notice: "Branch updated successfully."}, nil
}

func saveBranch(ctx context.Context, env *Env, input BranchInput) (Result, error) {
	notice, err := env.Branches.Save(input)
	if err != nil {
		return Result{}, err
	}

	return Result{Notice: notice}, nil
}

func deleteBranch(ctx context.Context, env *Env, input idInput) (Result, error) {
	if err := env.Branches.Delete(input.ID); err != nil {
		return Result{}, err
	}

	return Result{Notice: "Branch deleted successfully."}, nil
}
