// Package logging はログ出力向けの加入者識別子マスキングを提供する。
package logging

import "strings"

// MaskIMSI はIMSI文字列をマスキングする。
// 先頭6文字（MCC+MNC相当）と末尾1文字を残し、間を'*'で埋める。
// enabled=falseまたは文字列長が7以下の場合はそのまま返す。
func MaskIMSI(imsi string, enabled bool) string {
	if !enabled || len(imsi) <= 7 {
		return imsi
	}
	return imsi[:6] + strings.Repeat("*", len(imsi)-7) + imsi[len(imsi)-1:]
}
