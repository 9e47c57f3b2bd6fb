package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// messageDataSelect is the shared join used by every display-ready message
// query; callers append WHERE/JOIN/ORDER clauses
const messageDataSelect = `
	SELECT m.id, m.channel_id, m.message_type, m.content, m.file_url,
		m.location_lat, m.location_long, m.post, m.timestamp,
		s.id, s.email, s.name, s.image, s.color,
		r.id, r.email, r.name, r.image, r.color
	FROM messages m
	JOIN users s ON s.id = m.sender
	LEFT JOIN users r ON r.id = m.recipient
`

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*types.Message, error) {
	var message types.Message
	var recipient, channelID, post sql.NullString
	var lat, long sql.NullFloat64

	err := row.Scan(&message.ID, &message.SenderID, &recipient, &channelID, &message.Kind,
		&message.Content, &message.FileURL, &lat, &long, &post, &message.Timestamp)
	if err != nil {
		return nil, err
	}

	if recipient.Valid {
		message.RecipientID = &recipient.String
	}
	if channelID.Valid {
		message.ChannelID = &channelID.String
	}
	if lat.Valid && long.Valid {
		message.Location = &types.Location{Lat: lat.Float64, Long: long.Float64}
	}
	if post.Valid {
		var ref types.PostRef
		if err := json.Unmarshal([]byte(post.String), &ref); err != nil {
			return nil, fmt.Errorf("failed to unmarshal post payload: %w", err)
		}
		message.Post = &ref
	}

	return &message, nil
}

func scanMessageData(row rowScanner) (*types.MessageData, error) {
	var data types.MessageData
	var channelID, post sql.NullString
	var lat, long sql.NullFloat64
	var sender types.UserRef
	var rID, rEmail, rName, rImage sql.NullString
	var rColor sql.NullInt64

	err := row.Scan(&data.ID, &channelID, &data.Kind, &data.Content, &data.FileURL,
		&lat, &long, &post, &data.Timestamp,
		&sender.ID, &sender.Email, &sender.Name, &sender.Image, &sender.Color,
		&rID, &rEmail, &rName, &rImage, &rColor)
	if err != nil {
		return nil, err
	}

	data.Sender = &sender
	if channelID.Valid {
		data.ChannelID = &channelID.String
	}
	// FUNCTIONAL DISCOVERY: Recipient columns are NULL for channel messages -
	// only materialize the ref when the join actually matched
	if rID.Valid {
		data.Recipient = &types.UserRef{
			ID:    rID.String,
			Email: rEmail.String,
			Name:  rName.String,
			Image: rImage.String,
			Color: int(rColor.Int64),
		}
	}
	if lat.Valid && long.Valid {
		data.Location = &types.Location{Lat: lat.Float64, Long: long.Float64}
	}
	if post.Valid {
		var ref types.PostRef
		if err := json.Unmarshal([]byte(post.String), &ref); err != nil {
			return nil, fmt.Errorf("failed to unmarshal post payload: %w", err)
		}
		data.Post = &ref
	}

	return &data, nil
}

func collectMessageData(rows *sql.Rows) ([]*types.MessageData, error) {
	var messages []*types.MessageData
	for rows.Next() {
		data, err := scanMessageData(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}
