// Package protocol defines the wire messages exchanged between nodes: the
// gossipsub payloads published on the gossip topics, and the request/response
// pair used by the dedicated block-sync stream protocol.
package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/social-production/network/internal/block"
	"github.com/social-production/network/internal/transaction"
)

// Gossip topic names, one per gossiped event kind.
const (
	TopicTransaction      = "sp/tx"
	TopicBlock            = "sp/block"
	TopicBlockVerification = "sp/verify"
)

// Protocol IDs for the libp2p stream protocols this package speaks.
const (
	SyncProtocolID = "/sp/sync/1.0.0"
	AppProtocolID  = "/sp/1.0.0"
)

// messageTag identifies the concrete payload carried by a GossipMessage.
type messageTag uint8

const (
	tagTransaction messageTag = iota
	tagBlock
	tagBlockVerification
)

// GossipMessage is the tagged union published on every gossip topic. Only
// one of the embedded fields is meaningful, selected by the tag recovered
// during decode.
type GossipMessage struct {
	Transaction       *transaction.Transaction
	Block             *block.Block
	VerificationBlock uint64
	VerificationPeer  string
}

// NewTransactionMessage wraps tx for publication on TopicTransaction.
func NewTransactionMessage(tx *transaction.Transaction) GossipMessage {
	return GossipMessage{Transaction: tx}
}

// NewBlockMessage wraps b for publication on TopicBlock.
func NewBlockMessage(b *block.Block) GossipMessage {
	return GossipMessage{Block: b}
}

// NewVerificationMessage wraps a verification announcement for publication
// on TopicBlockVerification.
func NewVerificationMessage(height uint64, peerID string) GossipMessage {
	return GossipMessage{VerificationBlock: height, VerificationPeer: peerID}
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	binary.Write(buf, binary.LittleEndian, uint32(len(b)))
	buf.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeBytes(buf, []byte(s))
}

func readString(r *bytes.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeBlock(buf *bytes.Buffer, b *block.Block) {
	binary.Write(buf, binary.LittleEndian, b.Height)
	buf.Write(b.PrevHash[:])
	buf.Write(b.MerkleRoot[:])
	binary.Write(buf, binary.LittleEndian, b.Timestamp)
	binary.Write(buf, binary.LittleEndian, b.Nonce)

	binary.Write(buf, binary.LittleEndian, uint32(len(b.Transactions)))
	for _, tx := range b.Transactions {
		writeBytes(buf, tx.Serialize())
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(b.Verifications)))
	for _, v := range b.Verifications {
		writeString(buf, v)
	}
}

func readBlock(r *bytes.Reader) (*block.Block, error) {
	b := &block.Block{}

	if err := binary.Read(r, binary.LittleEndian, &b.Height); err != nil {
		return nil, fmt.Errorf("protocol: decode block height: %w", err)
	}
	if _, err := r.Read(b.PrevHash[:]); err != nil {
		return nil, fmt.Errorf("protocol: decode block prev hash: %w", err)
	}
	if _, err := r.Read(b.MerkleRoot[:]); err != nil {
		return nil, fmt.Errorf("protocol: decode block merkle root: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &b.Timestamp); err != nil {
		return nil, fmt.Errorf("protocol: decode block timestamp: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &b.Nonce); err != nil {
		return nil, fmt.Errorf("protocol: decode block nonce: %w", err)
	}

	var txCount uint32
	if err := binary.Read(r, binary.LittleEndian, &txCount); err != nil {
		return nil, fmt.Errorf("protocol: decode block tx count: %w", err)
	}
	b.Transactions = make([]*transaction.Transaction, txCount)
	for i := uint32(0); i < txCount; i++ {
		raw, err := readBytes(r)
		if err != nil {
			return nil, fmt.Errorf("protocol: decode block tx %d: %w", i, err)
		}
		tx, err := transaction.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("protocol: decode block tx %d: %w", i, err)
		}
		b.Transactions[i] = tx
	}

	var verCount uint32
	if err := binary.Read(r, binary.LittleEndian, &verCount); err != nil {
		return nil, fmt.Errorf("protocol: decode block verification count: %w", err)
	}
	b.Verifications = make([]string, verCount)
	for i := uint32(0); i < verCount; i++ {
		v, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("protocol: decode block verification %d: %w", i, err)
		}
		b.Verifications[i] = v
	}

	return b, nil
}

// Encode serialises m to its tagged binary wire form.
func (m GossipMessage) Encode() ([]byte, error) {
	var buf bytes.Buffer

	switch {
	case m.Transaction != nil:
		binary.Write(&buf, binary.LittleEndian, tagTransaction)
		writeBytes(&buf, m.Transaction.Serialize())
	case m.Block != nil:
		binary.Write(&buf, binary.LittleEndian, tagBlock)
		writeBlock(&buf, m.Block)
	default:
		binary.Write(&buf, binary.LittleEndian, tagBlockVerification)
		binary.Write(&buf, binary.LittleEndian, m.VerificationBlock)
		writeString(&buf, m.VerificationPeer)
	}

	return buf.Bytes(), nil
}

// DecodeGossipMessage parses a tagged message previously produced by
// Encode.
func DecodeGossipMessage(data []byte) (GossipMessage, error) {
	r := bytes.NewReader(data)

	var tag messageTag
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return GossipMessage{}, fmt.Errorf("protocol: decode tag: %w", err)
	}

	switch tag {
	case tagTransaction:
		raw, err := readBytes(r)
		if err != nil {
			return GossipMessage{}, fmt.Errorf("protocol: decode transaction message: %w", err)
		}
		tx, err := transaction.Deserialize(raw)
		if err != nil {
			return GossipMessage{}, fmt.Errorf("protocol: decode transaction message: %w", err)
		}
		return GossipMessage{Transaction: tx}, nil

	case tagBlock:
		b, err := readBlock(r)
		if err != nil {
			return GossipMessage{}, fmt.Errorf("protocol: decode block message: %w", err)
		}
		return GossipMessage{Block: b}, nil

	case tagBlockVerification:
		var height uint64
		if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
			return GossipMessage{}, fmt.Errorf("protocol: decode verification message: %w", err)
		}
		peer, err := readString(r)
		if err != nil {
			return GossipMessage{}, fmt.Errorf("protocol: decode verification message: %w", err)
		}
		return GossipMessage{VerificationBlock: height, VerificationPeer: peer}, nil

	default:
		return GossipMessage{}, fmt.Errorf("protocol: unknown message tag %d", tag)
	}
}

type syncRequestTag uint8

const (
	syncRequestChainTip syncRequestTag = iota
	syncRequestBlocksFrom
)

// SyncRequest is the tagged union sent over the sync stream protocol: either
// a bare ChainTip probe, or a BlocksFrom pull starting at FromIndex.
type SyncRequest struct {
	ChainTip  bool
	FromIndex uint64
}

// NewChainTipRequest builds the ChainTip variant.
func NewChainTipRequest() SyncRequest {
	return SyncRequest{ChainTip: true}
}

// NewBlocksFromRequest builds the BlocksFrom variant.
func NewBlocksFromRequest(fromIndex uint64) SyncRequest {
	return SyncRequest{FromIndex: fromIndex}
}

// Encode serialises req.
func (req SyncRequest) Encode() []byte {
	var buf bytes.Buffer
	if req.ChainTip {
		binary.Write(&buf, binary.LittleEndian, syncRequestChainTip)
	} else {
		binary.Write(&buf, binary.LittleEndian, syncRequestBlocksFrom)
		binary.Write(&buf, binary.LittleEndian, req.FromIndex)
	}
	return buf.Bytes()
}

// DecodeSyncRequest parses a SyncRequest previously produced by Encode.
func DecodeSyncRequest(data []byte) (SyncRequest, error) {
	r := bytes.NewReader(data)

	var tag syncRequestTag
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return SyncRequest{}, fmt.Errorf("protocol: decode sync request tag: %w", err)
	}

	switch tag {
	case syncRequestChainTip:
		return SyncRequest{ChainTip: true}, nil
	case syncRequestBlocksFrom:
		var from uint64
		if err := binary.Read(r, binary.LittleEndian, &from); err != nil {
			return SyncRequest{}, fmt.Errorf("protocol: decode sync request from index: %w", err)
		}
		return SyncRequest{FromIndex: from}, nil
	default:
		return SyncRequest{}, fmt.Errorf("protocol: unknown sync request tag %d", tag)
	}
}

type syncResponseTag uint8

const (
	syncResponseChainTip syncResponseTag = iota
	syncResponseBlocks
)

// SyncResponse is the tagged union returned over the sync stream protocol:
// either a ChainTip announcement, or a Blocks batch. The responder sends
// every block it has from the requested index on; no sync policy filters
// the batch.
type SyncResponse struct {
	HasTipIndex bool
	TipIndex    uint64
	Blocks      []*block.Block
}

// NewChainTipResponse builds the ChainTip variant.
func NewChainTipResponse(tipIndex uint64) SyncResponse {
	return SyncResponse{HasTipIndex: true, TipIndex: tipIndex}
}

// NewBlocksResponse builds the Blocks variant.
func NewBlocksResponse(blocks []*block.Block) SyncResponse {
	return SyncResponse{Blocks: blocks}
}

// Encode serialises resp.
func (resp SyncResponse) Encode() []byte {
	var buf bytes.Buffer
	if resp.HasTipIndex {
		binary.Write(&buf, binary.LittleEndian, syncResponseChainTip)
		binary.Write(&buf, binary.LittleEndian, resp.TipIndex)
		return buf.Bytes()
	}

	binary.Write(&buf, binary.LittleEndian, syncResponseBlocks)
	binary.Write(&buf, binary.LittleEndian, uint32(len(resp.Blocks)))
	for _, b := range resp.Blocks {
		writeBlock(&buf, b)
	}
	return buf.Bytes()
}

// DecodeSyncResponse parses a SyncResponse previously produced by Encode.
func DecodeSyncResponse(data []byte) (SyncResponse, error) {
	r := bytes.NewReader(data)

	var tag syncResponseTag
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return SyncResponse{}, fmt.Errorf("protocol: decode sync response tag: %w", err)
	}

	switch tag {
	case syncResponseChainTip:
		var tip uint64
		if err := binary.Read(r, binary.LittleEndian, &tip); err != nil {
			return SyncResponse{}, fmt.Errorf("protocol: decode sync response tip: %w", err)
		}
		return SyncResponse{HasTipIndex: true, TipIndex: tip}, nil

	case syncResponseBlocks:
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return SyncResponse{}, fmt.Errorf("protocol: decode sync response count: %w", err)
		}
		blocks := make([]*block.Block, count)
		for i := uint32(0); i < count; i++ {
			b, err := readBlock(r)
			if err != nil {
				return SyncResponse{}, fmt.Errorf("protocol: decode sync response block %d: %w", i, err)
			}
			blocks[i] = b
		}
		return SyncResponse{Blocks: blocks}, nil

	default:
		return SyncResponse{}, fmt.Errorf("protocol: unknown sync response tag %d", tag)
	}
}
