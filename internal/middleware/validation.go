package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/hireloop/internal/app/models/dto"
)

// UseJSONFieldNames makes validation errors name fields by their json (or,
// for query filters, form) tag instead of the Go field name.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// BindAndValidate binds the JSON body into obj; gin runs the binding tags through
// validator. On failure the 400 response is already written and false is returned.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	return bindWith(c, obj, c.ShouldBindJSON)
}

// BindQuery is BindAndValidate for query string filters
func BindQuery(c *gin.Context, obj interface{}) bool {
	return bindWith(c, obj, c.ShouldBindQuery)
}

func bindWith(c *gin.Context, obj interface{}, bind func(interface{}) error) bool {
	err := bind(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	var detail *dto.ErrorDetail
	if errors.As(err, &verrs) {
		detail = dto.HandleValidationError(err)
	} else {
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format").WithDetails(err.Error())
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
	return false
}
