package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/fastqash/blog/internal/db"
	"github.com/go-playground/validator/v10"
)

var inputValidator = newInputValidator()

// PostInput 是后台创建、编辑文章时接受的请求体。
// ImageBase64 为可选的 data URI，非空时会先上传到图床。
type PostInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Excerpt     string `json:"excerpt" form:"excerpt" validate:"max=2000"`
	Content     string `json:"content" form:"content"`
	Category    string `json:"category" form:"category" validate:"max=100"`
	ImageBase64 string `json:"imageBase64" form:"imageBase64" validate:"omitempty,datauri"`
}

// Normalize 去除首尾空白并补齐默认分类。
func (in PostInput) Normalize() PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Category = strings.TrimSpace(in.Category)
	in.ImageBase64 = strings.TrimSpace(in.ImageBase64)
	if in.Category == "" {
		in.Category = db.DefaultCategory
	}
	return in
}

// Validate 按字段规则校验输入，失败时返回 *ValidationError。
func (in PostInput) Validate() error {
	if err := inputValidator.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}

		verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
		for _, fe := range fieldErrs {
			verr.Fields[fe.Field()] = describeFieldError(fe)
		}
		return verr
	}
	return nil
}

func (in PostInput) fields() PostFields {
	return PostFields{
		Title:    in.Title,
		Excerpt:  in.Excerpt,
		Content:  in.Content,
		Category: in.Category,
	}
}

func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "datauri":
		return "must be a base64 data URI"
	default:
		return "is invalid"
	}
}
