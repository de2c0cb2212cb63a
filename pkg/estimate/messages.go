package estimate

import (
	"fmt"
	"strings"
)

// WarningCode is the stable identifier of a caveat attached to a result.
type WarningCode string

const (
	WarnInsufficientData  WarningCode = "insufficient_data"
	WarnSmallDifferential WarningCode = "small_differential"
	WarnCoolingUnreliable WarningCode = "cooling_unreliable"
	WarnRigorInconsistent WarningCode = "rigor_inconsistent"
	WarnLivorInconsistent WarningCode = "livor_inconsistent"
)

// Warning is a caveat raised during estimation. TempDiff carries the
// rectal-minus-ambient differential for WarnSmallDifferential.
type Warning struct {
	Code     WarningCode
	TempDiff float64
}

// Locale selects the language of warning and disclaimer texts.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleZH Locale = "zh"
)

// ParseLocale accepts "en" or "zh" (case-insensitive, region suffix ignored,
// so "zh-CN" is LocaleZH). The empty string is LocaleEN.
func ParseLocale(s string) (Locale, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "", "en":
		return LocaleEN, nil
	case "zh":
		return LocaleZH, nil
	}
	return "", fmt.Errorf("estimate: unknown locale %q: want en|zh", s)
}

var warningTexts = map[Locale]map[WarningCode]string{
	LocaleEN: {
		WarnInsufficientData:  "Enter at least one post-mortem phenomenon!",
		WarnSmallDifferential: "Body and ambient temperatures differ too little (%.1f°C); the estimate may be inaccurate.",
		WarnCoolingUnreliable: "The body temperature computation failed, possibly because the temperature differential is too small.",
		WarnRigorInconsistent: "Rigor mortis data may be inaccurate; the body temperature result takes priority!",
		WarnLivorInconsistent: "Livor mortis data may be inaccurate; the body temperature result takes priority!",
	},
	LocaleZH: {
		WarnInsufficientData:  "请输入至少一项尸体现象数据！",
		WarnSmallDifferential: "尸温与环境温度差异过小（%.1f℃），估计结果可能不准确。",
		WarnCoolingUnreliable: "尸温计算出现问题，可能是温度差异不足导致。",
		WarnRigorInconsistent: "尸僵数据可能不准确，已优先使用尸温结果！",
		WarnLivorInconsistent: "尸斑数据可能不准确，已优先使用尸温结果！",
	},
}

var disclaimers = map[Locale]string{
	LocaleEN: "Disclaimer: this tool is for professional reference only. Actual cases must be judged by qualified forensic examiners from a full scene investigation and autopsy.",
	LocaleZH: "免责声明：本工具仅供专业参考使用，实际案件应由具备资质的法医人员根据全面现场调查与尸检结果做出综合判断。",
}

// Text renders w in the locale. Unknown locales render in English; unknown
// codes render as the code itself.
func (l Locale) Text(w Warning) string {
	texts, ok := warningTexts[l]
	if !ok {
		texts = warningTexts[LocaleEN]
	}
	format, ok := texts[w.Code]
	if !ok {
		return string(w.Code)
	}
	if w.Code == WarnSmallDifferential {
		return fmt.Sprintf(format, w.TempDiff)
	}
	return format
}

// Disclaimer returns the usage disclaimer shown next to every result.
func (l Locale) Disclaimer() string {
	if d, ok := disclaimers[l]; ok {
		return d
	}
	return disclaimers[LocaleEN]
}
