package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fenceMarker = "```"

// Origin 标记 JSON 候选文本的来源
type Origin int

const (
	OriginNone Origin = iota
	OriginTaggedFence
	OriginUntaggedFence
	OriginWholeText
)

func (o Origin) String() string {
	switch o {
	case OriginTaggedFence:
		return "json fence"
	case OriginUntaggedFence:
		return "plain fence"
	case OriginWholeText:
		return "whole text"
	default:
		return "none"
	}
}

type fence struct {
	tag  string
	body string
}

// scanFences 顺序扫描文本中的代码块。
// 开始标记为 ``` 加可选语言标签并以换行结束，标签只能是单个词；
// 标记后跟着其他文字（如行内提到 ```json 的说明）不算开始，跳到下一行继续。
// 结束标记为位于行首的 ```。
func scanFences(text string) []fence {
	var fences []fence
	pos := 0
	for {
		idx := strings.Index(text[pos:], fenceMarker)
		if idx < 0 {
			return fences
		}
		open := pos + idx
		tagStart := open + len(fenceMarker)
		nl := strings.IndexByte(text[tagStart:], '\n')
		if nl < 0 {
			return fences
		}
		bodyStart := tagStart + nl + 1
		tag := strings.TrimSpace(text[tagStart : tagStart+nl])
		if !isFenceTag(tag) {
			pos = bodyStart
			continue
		}

		rest := text[bodyStart:]
		if strings.HasPrefix(rest, fenceMarker) {
			fences = append(fences, fence{tag: tag})
			pos = bodyStart + len(fenceMarker)
			continue
		}
		closeIdx := strings.Index(rest, "\n"+fenceMarker)
		if closeIdx < 0 {
			return fences
		}
		fences = append(fences, fence{tag: tag, body: rest[:closeIdx]})
		pos = bodyStart + closeIdx + 1 + len(fenceMarker)
	}
}

func isFenceTag(tag string) bool {
	return !strings.ContainsAny(tag, " \t`")
}

// ExtractJSON 两阶段定位 JSON 文本：优先 ```json 代码块，其次无标签代码块，
// 都没有时把整段文本作为候选。
func ExtractJSON(text string) (string, Origin) {
	fences := scanFences(text)
	for _, f := range fences {
		if strings.EqualFold(f.tag, "json") {
			return f.body, OriginTaggedFence
		}
	}
	for _, f := range fences {
		if f.tag == "" {
			return f.body, OriginUntaggedFence
		}
	}
	return text, OriginWholeText
}

// validator 解析后需要校验的结构
type validator interface {
	Validate() error
}

// decode 提取并反序列化，随后做枚举与范围校验。
// 失败返回 ParseError。
func decode[T any, PT interface {
	*T
	validator
}](text string) (*T, error) {
	candidate, origin := ExtractJSON(text)
	if strings.TrimSpace(candidate) == "" {
		return nil, newParseError(fmt.Errorf("empty json candidate from %s", origin))
	}

	var v T
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, newParseError(fmt.Errorf("unmarshal %s: %w", origin, err))
	}
	if err := PT(&v).Validate(); err != nil {
		return nil, newParseError(fmt.Errorf("validate %s: %w", origin, err))
	}
	return &v, nil
}
