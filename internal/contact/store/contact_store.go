package store

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	errors2 "github.com/wso2/identity-contact-resolution-service/internal/system/errors"
	"github.com/wso2/identity-contact-resolution-service/internal/system/database/provider"
	"github.com/wso2/identity-contact-resolution-service/internal/system/log"
)

func scanContactRow(row map[string]interface{}) model.Contact {

	var contact model.Contact

	contact.ContactID = row["contact_id"].(int64)
	if value, ok := row["email"].(string); ok {
		contact.Email = &value
	}
	if value, ok := row["phone_number"].(string); ok {
		contact.PhoneNumber = &value
	}
	if value, ok := row["linked_id"].(int64); ok {
		contact.LinkedID = &value
	}
	contact.LinkPrecedence = row["link_precedence"].(string)
	contact.CreatedAt = row["created_at"].(time.Time)
	contact.UpdatedAt = row["updated_at"].(time.Time)

	return contact
}

// GetContact fetches a single contact by id. Returns nil when no such
// contact exists.
func GetContact(contactId int64) (*model.Contact, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get database client for fetching a contact"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}
	defer dbClient.Close()

	query := `
		SELECT contact_id, email, phone_number, linked_id, link_precedence, created_at, updated_at
		FROM contacts
		WHERE contact_id = $1;`

	results, err := dbClient.ExecuteQuery(query, contactId)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch contact with id: %d", contactId)
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}
	if len(results) == 0 {
		return nil, nil
	}

	contact := scanContactRow(results[0])
	return &contact, nil
}

// FindContactsByEmailOrPhone returns every contact whose email or phone
// number exactly matches one of the given identifiers. Either identifier
// may be nil; a nil identifier never matches a stored NULL.
func FindContactsByEmailOrPhone(email, phoneNumber *string) ([]model.Contact, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get database client for matching contacts"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}
	defer dbClient.Close()

	query := `
		SELECT contact_id, email, phone_number, linked_id, link_precedence, created_at, updated_at
		FROM contacts
		WHERE (email = $1 AND $1 IS NOT NULL)
		   OR (phone_number = $2 AND $2 IS NOT NULL)
		ORDER BY contact_id;`

	results, err := dbClient.ExecuteQuery(query, email, phoneNumber)
	if err != nil {
		errorMsg := "Failed to match contacts by email or phone number"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}

	contacts := make([]model.Contact, 0, len(results))
	for _, row := range results {
		contacts = append(contacts, scanContactRow(row))
	}
	return contacts, nil
}

// GetContactsByIds fetches the given contacts in ascending id order.
func GetContactsByIds(contactIds []int64) ([]model.Contact, error) {

	if len(contactIds) == 0 {
		return []model.Contact{}, nil
	}

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get database client for fetching contacts"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}
	defer dbClient.Close()

	query := `
		SELECT contact_id, email, phone_number, linked_id, link_precedence, created_at, updated_at
		FROM contacts
		WHERE contact_id = ANY($1)
		ORDER BY contact_id;`

	results, err := dbClient.ExecuteQuery(query, pq.Array(contactIds))
	if err != nil {
		errorMsg := "Failed to fetch contacts by ids"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}

	contacts := make([]model.Contact, 0, len(results))
	for _, row := range results {
		contacts = append(contacts, scanContactRow(row))
	}
	return contacts, nil
}

// GetAllContacts lists every contact in ascending id order.
func GetAllContacts() ([]model.Contact, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get database client for listing contacts"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}
	defer dbClient.Close()

	query := `
		SELECT contact_id, email, phone_number, linked_id, link_precedence, created_at, updated_at
		FROM contacts
		ORDER BY contact_id;`

	results, err := dbClient.ExecuteQuery(query)
	if err != nil {
		errorMsg := "Failed to list contacts"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}

	contacts := make([]model.Contact, 0, len(results))
	for _, row := range results {
		contacts = append(contacts, scanContactRow(row))
	}
	return contacts, nil
}
