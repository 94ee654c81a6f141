package domain

// BlockKind is the display type of a digest block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockBullet
)

// Block is one display line of the digest page. Link is optional.
type Block struct {
	Kind BlockKind
	Text string
	Link string
}

func Heading(text string) Block {
	return Block{Kind: BlockHeading, Text: text}
}

func Bullet(text, link string) Block {
	return Block{Kind: BlockBullet, Text: text, Link: link}
}
