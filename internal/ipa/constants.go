// Package ipa はip.accessマルチプレクスレイヤ (IPA) のフレーム処理を提供する。
// IPAはTCPの上で複数プロトコルを1本のコネクションに多重化し、
// 上位プロトコルがメッセージ単位で処理できるようセグメント化を吸収する。
//
// フレームレイアウト:
//
//	オフセット  長さ  フィールド
//	0           2     ペイロード長（ビッグエンディアン）
//	2           1     ストリームID (0xfe=CCM, 0xee=OSMO)
//	3           可変  ペイロード
//
// OSMOストリームのペイロードは先頭1バイトが拡張プロトコル識別子で、
// ペイロード長はこの拡張バイトを含んで数える。
package ipa

// HeaderLen はIPAヘッダ長（バイト）
const HeaderLen = 3

// ストリームID
const (
	StreamCCM  uint8 = 0xfe
	StreamOsmo uint8 = 0xee
)

// OSMOストリームの拡張プロトコル識別子
const (
	OsmoExtnCtrl uint8 = 0x00
	OsmoExtnGSUP uint8 = 0x05
	OsmoExtnOAP  uint8 = 0x06
)

// CCM (Connection Management) のメッセージ種別
const (
	CCMPing uint8 = 0x00
	CCMPong uint8 = 0x01
)
