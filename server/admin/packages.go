package admin

import (
	"context"
	"net/url"

	"github.com/skybiz/skybiz/server/models"
)

type packageInput struct {
	PackageID     *uint   `form:"package_id"`
	Name          string  `form:"name" validate:"required,max=100"`
	PackageType   string  `form:"package_type" validate:"omitempty,oneof=residential business"`
	DownloadSpeed int     `form:"download_speed"`
	UploadSpeed   int     `form:"upload_speed"`
	PriceCents    int64   `form:"price"`
	DataLimit     *string `form:"data_limit" validate:"omitempty,max=100"`
	Features      *string `form:"features"`
	IsPopular     bool    `form:"is_popular"`
}

func decodePackage(form url.Values) (packageInput, error) {
	verr := &ValidationError{}
	input := packageInput{
		PackageID:     formOptionalID(form, "package_id", verr),
		Name:          formString(form, "name"),
		PackageType:   formString(form, "package_type"),
		DownloadSpeed: formInt(form, "download_speed", verr),
		UploadSpeed:   formInt(form, "upload_speed", verr),
		DataLimit:     formOptionalString(form, "data_limit"),
		Features:      formOptionalString(form, "features"),
		IsPopular:     form.Get("is_popular") == "on",
	}

	if price := formString(form, "price"); price != "" {
		cents, err := models.ParsePrice(price)
		if err != nil {
			verr.add("price", "Enter a number.")
		}
		input.PriceCents = cents
	}

	if input.PackageID == nil && input.PackageType == "" {
		verr.add("package_type", "This field is required.")
	}

	return input, validateInput(input, verr)
}

// savePackage creates a package when no id is given, otherwise it updates the matching
// package. The package type of an existing package never changes.
func savePackage(ctx context.Context, env *Env, input packageInput) (Result, error) {
	if input.PackageID == nil {
		pkg := &models.Package{
			Name:          input.Name,
			PackageType:   input.PackageType,
			DownloadSpeed: input.DownloadSpeed,
			UploadSpeed:   input.UploadSpeed,
			PriceCents:    input.PriceCents,
			DataLimit:     input.DataLimit,
			Features:      input.Features,
			IsPopular:     input.IsPopular,
		}

		if err := models.CreatePackage(pkg); err != nil {
			return Result{}, err
		}

		return Result{Notice: "Package added successfully."}, nil
	}

	pkg, err := models.FindPackage(*input.PackageID)
	if err != nil {
		return Result{}, notFoundAs(err, "Package")
	}

	err = pkg.Update(map[string]interface{}{
		"name":           input.Name,
		"download_speed": input.DownloadSpeed,
		"upload_speed":   input.UploadSpeed,
		"price_cents":    input.PriceCents,
		"data_limit":     input.DataLimit,
		"features":       input.Features,
		"is_popular":     input.IsPopular,
	})
	if err != nil {
		return Result{}, notFoundAs(err, "Package")
	}

	return Result{Notice: "Package updated successfully."}, nil
}

func deletePackage(ctx context.Context, env *Env, input idInput) (Result, error) {
	if err := models.DeletePackage(input.ID); err != nil {
		return Result{}, notFoundAs(err, "Package")
	}

	return Result{Notice: "Package deleted successfully."}, nil
}
