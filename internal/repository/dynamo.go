package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client the repository calls.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// bookingItem is the stored shape of a booking. Dates are ISO strings so the
// overlap filter compares them lexically.
type bookingItem struct {
	BookingID       string         `dynamodbav:"bookingId"`
	GuestName       string         `dynamodbav:"guestName"`
	Email           string         `dynamodbav:"email"`
	Guests          int            `dynamodbav:"guests"`
	RoomTypes       map[string]int `dynamodbav:"roomTypes"`
	TotalRooms      int            `dynamodbav:"totalRooms"`
	TotalCapacity   int            `dynamodbav:"totalCapacity"`
	CheckIn         string         `dynamodbav:"checkIn,omitempty"`
	CheckOut        string         `dynamodbav:"checkOut,omitempty"`
	TotalCost       int            `dynamodbav:"totalCost"`
	SpecialRequests string         `dynamodbav:"specialRequests,omitempty"`
	Status          string         `dynamodbav:"status"`
	CreatedAt       string         `dynamodbav:"createdAt"`
	UpdatedAt       string         `dynamodbav:"updatedAt"`
}

// DynamoRepository stores bookings in a DynamoDB table keyed by bookingId.
type DynamoRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoRepository constructs a DynamoRepository.
func NewDynamoRepository(client DynamoAPI, table string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table}
}

func (r *DynamoRepository) Create(ctx context.Context, b *model.Booking) error {
	item, err := attributevalue.MarshalMap(toItem(b))
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(bookingId)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("put booking: %w", err)
	}
	return nil
}

func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       bookingKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return decodeBooking(out.Item)
}

func (r *DynamoRepository) List(ctx context.Context) ([]model.Booking, error) {
	bookings, err := r.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	if err != nil {
		return nil, fmt.Errorf("scan bookings: %w", err)
	}
	sortNewestFirst(bookings)
	return bookings, nil
}

// ListOverlapping runs a filtered full-table scan.
func (r *DynamoRepository) ListOverlapping(ctx context.Context, from, to model.Date) ([]model.Booking, error) {
	expr, err := overlapFilter(from, to)
	if err != nil {
		return nil, err
	}
	bookings, err := r.scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("scan overlapping bookings: %w", err)
	}
	sortNewestFirst(bookings)
	return bookings, nil
}

func (r *DynamoRepository) Update(ctx context.Context, id string, changes model.BookingChanges) (*model.Booking, error) {
	expr, err := updateExpression(changes)
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       bookingKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return decodeBooking(out.Attributes)
}

func (r *DynamoRepository) Delete(ctx context.Context, id string) (*model.Booking, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table),
		Key:          bookingKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	if len(out.Attributes) == 0 {
		return nil, ErrNotFound
	}
	return decodeBooking(out.Attributes)
}

func (r *DynamoRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]model.Booking, error) {
	var bookings []model.Booking
	pages := dynamodb.NewScanPaginator(r.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			b, err := decodeBooking(item)
			if err != nil {
				return nil, err
			}
			bookings = append(bookings, *b)
		}
	}
	return bookings, nil
}

func overlapFilter(from, to model.Date) (expression.Expression, error) {
	filter := expression.Name("checkIn").LessThanEqual(expression.Value(to.String())).
		And(expression.Name("checkOut").GreaterThanEqual(expression.Value(from.String())))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build overlap filter: %w", err)
	}
	return expr, nil
}

func updateExpression(c model.BookingChanges) (expression.Expression, error) {
	update := expression.Set(expression.Name("updatedAt"), expression.Value(formatTime(c.UpdatedAt)))
	if c.GuestName != nil {
		update = update.Set(expression.Name("guestName"), expression.Value(*c.GuestName))
	}
	if c.Email != nil {
		update = update.Set(expression.Name("email"), expression.Value(*c.Email))
	}
	if c.Guests != nil {
		update = update.Set(expression.Name("guests"), expression.Value(*c.Guests))
	}
	if c.RoomTypes != nil {
		update = update.Set(expression.Name("roomTypes"), expression.Value(c.RoomTypes))
	}
	if c.TotalRooms != nil {
		update = update.Set(expression.Name("totalRooms"), expression.Value(*c.TotalRooms))
	}
	if c.TotalCapacity != nil {
		update = update.Set(expression.Name("totalCapacity"), expression.Value(*c.TotalCapacity))
	}
	if c.TotalCost != nil {
		update = update.Set(expression.Name("totalCost"), expression.Value(*c.TotalCost))
	}
	if c.CheckIn != nil {
		update = update.Set(expression.Name("checkIn"), expression.Value(c.CheckIn.String()))
	}
	if c.CheckOut != nil {
		update = update.Set(expression.Name("checkOut"), expression.Value(c.CheckOut.String()))
	}
	if c.SpecialRequests != nil {
		update = update.Set(expression.Name("specialRequests"), expression.Value(*c.SpecialRequests))
	}
	if c.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(string(*c.Status)))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("bookingId"))).
		Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build update expression: %w", err)
	}
	return expr, nil
}

func bookingKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"bookingId": &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func toItem(b *model.Booking) bookingItem {
	item := bookingItem{
		BookingID:       b.BookingID,
		GuestName:       b.GuestName,
		Email:           b.Email,
		Guests:          b.Guests,
		RoomTypes:       b.RoomTypes,
		TotalRooms:      b.TotalRooms,
		TotalCapacity:   b.TotalCapacity,
		TotalCost:       b.TotalCost,
		SpecialRequests: b.SpecialRequests,
		Status:          string(b.Status),
		CreatedAt:       formatTime(b.CreatedAt),
		UpdatedAt:       formatTime(b.UpdatedAt),
	}
	if b.CheckIn != nil {
		item.CheckIn = b.CheckIn.String()
	}
	if b.CheckOut != nil {
		item.CheckOut = b.CheckOut.String()
	}
	return item
}

func fromItem(item bookingItem) (*model.Booking, error) {
	b := &model.Booking{
		BookingID:       item.BookingID,
		GuestName:       item.GuestName,
		Email:           item.Email,
		Guests:          item.Guests,
		RoomTypes:       item.RoomTypes,
		TotalRooms:      item.TotalRooms,
		TotalCapacity:   item.TotalCapacity,
		TotalCost:       item.TotalCost,
		SpecialRequests: item.SpecialRequests,
		Status:          model.Status(item.Status),
	}
	var err error
	if b.CheckIn, err = parseOptionalDate(item.CheckIn); err != nil {
		return nil, err
	}
	if b.CheckOut, err = parseOptionalDate(item.CheckOut); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(item.CreatedAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(item.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeBooking(av map[string]types.AttributeValue) (*model.Booking, error) {
	var item bookingItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("unmarshal booking: %w", err)
	}
	return fromItem(item)
}

func parseOptionalDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("stored date: %w", err)
	}
	return &d, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored timestamp %q: %w", s, err)
	}
	return t, nil
}
