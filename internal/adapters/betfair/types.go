package betfair

import "encoding/xml"

// Tipos wire del Games API. El API habla XML (urn:betfair:games:api:v1);
// encoding/xml casa por nombre local así que el namespace no molesta.

type channelSnapshot struct {
	XMLName     xml.Name         `xml:"channelSnapshot"`
	MarketID    string           `xml:"marketId,attr"`
	Round       string           `xml:"round,attr"`
	Shoe        shoeElem         `xml:"shoe"`
	Selections  []selectionElem  `xml:"marketSelections>selection"`
	Settlements []settlementElem `xml:"settlements>settlement"`
}

type shoeElem struct {
	CardsDealt     int        `xml:"cardsDealt"`
	CardsRemaining int        `xml:"cardsRemaining"`
	Cards          []cardElem `xml:"cardCounts>card"`
}

type cardElem struct {
	Rank  int `xml:"rank,attr"`
	Count int `xml:",chardata"`
}

type selectionElem struct {
	SelectionID   string   `xml:"selectionId"`
	Name          string   `xml:"name"`
	Status        string   `xml:"status"`
	BestBackPrice *float64 `xml:"bestBackPrice"`
	BestLayPrice  *float64 `xml:"bestLayPrice"`
}

type settlementElem struct {
	BetID       string  `xml:"betId"`
	SelectionID string  `xml:"selectionId"`
	Status      string  `xml:"status"`
	Payout      float64 `xml:"payout"`
}

type postBetOrder struct {
	XMLName  xml.Name         `xml:"postBetOrder"`
	Xmlns    string           `xml:"xmlns,attr"`
	MarketID string           `xml:"marketId,attr"`
	Round    string           `xml:"round,attr"`
	Currency string           `xml:"currency,attr"`
	Request  totalSizeRequest `xml:"totalSizeRequest"`
}

type totalSizeRequest struct {
	BidType     string  `xml:"bidType"`
	Price       float64 `xml:"price"`
	TotalSize   float64 `xml:"totalSize"`
	SelectionID string  `xml:"selectionId"`
}

type postBetOrderResponse struct {
	XMLName     xml.Name `xml:"postBetOrderResponse"`
	Status      string   `xml:"status"`
	SelectionID string   `xml:"selectionId"`
	BetID       string   `xml:"betId"`
}

type accountSnapshot struct {
	XMLName          xml.Name `xml:"accountSnapshot"`
	AvailableBalance float64  `xml:"availableToBetBalance"`
	Exposure         float64  `xml:"currentExposure"`
}
