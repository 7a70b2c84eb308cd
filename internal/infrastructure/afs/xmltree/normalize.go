package xmltree

import (
	"fmt"
	"strings"
)

// Normalize SOAPレスポンスから結果要素を取り出して正規化する
//
//  1. 文書全体をローカル名で前順探索し、resultTagに一致する要素を変換
//  2. 見つからない場合はBody要素の最初の子（操作ラッパー）を使う。
//     ラッパーの最初の子のタグに "Result" が含まれていればそれを変換する
//  3. いずれも無ければ *NotFoundError を返す
func Normalize(payload []byte, resultTag string) (Node, error) {
	root, err := parse(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if el := root.find(func(local string) bool { return local == resultTag }); el != nil {
		return convert(el), nil
	}

	body := root.find(func(local string) bool { return strings.HasSuffix(local, "Body") })
	if body != nil && len(body.children) > 0 {
		wrapper := body.children[0]
		if len(wrapper.children) > 0 && strings.Contains(wrapper.children[0].local, "Result") {
			return convert(wrapper.children[0]), nil
		}
		return convert(wrapper), nil
	}

	return nil, &NotFoundError{Tag: resultTag}
}
