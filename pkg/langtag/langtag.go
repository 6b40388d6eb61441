package langtag

import (
	"strings"

	"golang.org/x/text/language"

	"opussub/pkg/contract"
)

// Resolver 将自由语言名（"French"）或 OPUS/BCP-47 风格标签（"pt_br"、"cmn"）
// 解析为 ISO 639-3 码、宏语言码与推断文字。
// 实现：英文名与 639-2/B 异体走本地查找表，其余交给 x/text 的标签解析与
// 宏语言规范化。纯函数、无状态。
type Resolver struct{}

// New 创建解析器。
func New() *Resolver { return &Resolver{} }

var _ contract.Resolver = (*Resolver)(nil)

// byName: 英文语言名（小写）→ BCP-47 主标签。
// 覆盖 OPUS OpenSubtitles 元数据中常见的原始语言名。
var byName = map[string]string{
	"english": "en", "french": "fr", "german": "de", "spanish": "es",
	"italian": "it", "portuguese": "pt", "dutch": "nl", "polish": "pl",
	"russian": "ru", "ukrainian": "uk", "czech": "cs", "slovak": "sk",
	"slovenian": "sl", "croatian": "hr", "serbian": "sr", "bosnian": "bs",
	"bulgarian": "bg", "romanian": "ro", "hungarian": "hu", "greek": "el",
	"turkish": "tr", "arabic": "ar", "hebrew": "he", "persian": "fa",
	"hindi": "hi", "bengali": "bn", "tamil": "ta", "telugu": "te",
	"malayalam": "ml", "urdu": "ur", "thai": "th", "vietnamese": "vi",
	"indonesian": "id", "malay": "ms", "chinese": "zh", "mandarin": "cmn",
	"cantonese": "yue", "japanese": "ja", "korean": "ko", "swedish": "sv",
	"danish": "da", "norwegian": "no", "finnish": "fi", "icelandic": "is",
	"estonian": "et", "latvian": "lv", "lithuanian": "lt", "georgian": "ka",
	"armenian": "hy", "albanian": "sq", "macedonian": "mk", "catalan": "ca",
	"basque": "eu", "galician": "gl", "esperanto": "eo",
}

// byAlt3: ISO 639-2/B 异体码 → BCP-47 主标签（x/text 不接受 B 系码）。
var byAlt3 = map[string]string{
	"fre": "fr", "ger": "de", "dut": "nl", "chi": "zh", "gre": "el",
	"cze": "cs", "per": "fa", "rum": "ro", "arm": "hy", "geo": "ka",
	"ice": "is", "alb": "sq", "mac": "mk", "may": "ms", "slo": "sk",
	"baq": "eu", "wel": "cy", "bur": "my", "tib": "bo",
}

// Resolve 解析语言名或标签；未知输入返回零值。
func (r *Resolver) Resolve(tagOrName string) contract.LangInfo {
	s := strings.TrimSpace(tagOrName)
	if s == "" {
		return contract.LangInfo{}
	}
	// 先按英文名查表（整串，小写）。
	key := strings.ToLower(s)
	if t, ok := byName[key]; ok {
		return fromTag(t)
	}
	// OPUS 标签约定：下划线后为地区/变体修饰，仅取首段（如 pt_br → pt）。
	v := key
	if i := strings.IndexByte(v, '_'); i >= 0 {
		v = v[:i]
	}
	if t, ok := byAlt3[v]; ok {
		return fromTag(t)
	}
	return fromTag(v)
}

// fromTag: 经 x/text 解析标签并填充 code/macro/scripts。
func fromTag(s string) contract.LangInfo {
	tag, err := language.Parse(s)
	if err != nil {
		return contract.LangInfo{}
	}
	base, conf := tag.Base()
	if conf == language.No {
		return contract.LangInfo{}
	}
	info := contract.LangInfo{Code: base.ISO3()}
	info.MacroCode = info.Code
	if mtag, err := language.Macro.Canonicalize(tag); err == nil {
		if mbase, mconf := mtag.Base(); mconf != language.No {
			info.MacroCode = mbase.ISO3()
		}
	}
	if scr, sconf := tag.Script(); sconf > language.No {
		info.Scripts = []string{scr.String()}
	}
	return info
}
