package handler

import (
	"fmt"
	"reflect"
	"strings"

	"tutor_match_server/pkg/util/phone"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 全局翻译器，HandleParamError 用它翻译校验错误
var Trans ut.Translator

// validateMobile 学生/家长联系电话：11 位数字
func validateMobile(fl validator.FieldLevel) bool {
	return phone.Valid(fl.Field().String())
}

// InitTrans 初始化 gin 校验器的翻译，并注册自定义的 mobile 规则
// locale 为 "zh" 或 "en"，其他值按英文处理
func InitTrans(locale string) (err error) {
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	// 错误提示使用 json 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err = v.RegisterValidation("mobile", validateMobile); err != nil {
		return err
	}

	zhT := zh.New()
	enT := en.New()
	uni := ut.New(enT, zhT, enT)

	Trans, ok = uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "zh":
		err = zh_translations.RegisterDefaultTranslations(v, Trans)
	default:
		err = en_translations.RegisterDefaultTranslations(v, Trans)
	}
	if err != nil {
		return err
	}
	return registerMobileTranslation(v, locale)
}

func registerMobileTranslation(v *validator.Validate, locale string) error {
	text := "{0} must be an 11-digit phone number"
	if locale == "zh" {
		text = "{0}必须是11位数字手机号"
	}
	return v.RegisterTranslation("mobile", Trans,
		func(t ut.Translator) error {
			return t.Add("mobile", text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("mobile", fe.Field())
			return msg
		},
	)
}

// RemoveTopStruct 去掉字段名里的结构体前缀，如 "PostJobRequest.title" -> "title"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// defaultValidator gin 未初始化校验器时的兜底实现
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() interface{} {
	return v.validator
}
