package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveClient mirrors uploaded files to a Google Drive folder tree rooted at
// a configured folder: one Form_<id> subfolder per form. Constructed once at
// process start from validated configuration.
type DriveClient struct {
	svc        *drive.Service
	rootFolder string
}

func NewDriveClient(ctx context.Context, clientID, clientSecret, refreshToken, rootFolder string) (*DriveClient, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("drive refresh token is not configured")
	}
	if rootFolder == "" {
		return nil, fmt.Errorf("drive root folder is not configured")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	log.Printf("drive client initialized with root folder %s", rootFolder)
	return &DriveClient{svc: svc, rootFolder: rootFolder}, nil
}

// EnsureFormFolder returns the id of the Form_<formID> folder under the root,
// creating it if absent.
func (c *DriveClient) EnsureFormFolder(ctx context.Context, formID uint) (string, error) {
	name := fmt.Sprintf("Form_%d", formID)
	query := fmt.Sprintf(
		"name='%s' and mimeType='application/vnd.google-apps.folder' and '%s' in parents and trashed=false",
		name, c.rootFolder,
	)

	list, err := c.svc.Files.List().Q(query).Fields("files(id, name)").Spaces("drive").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list form folders: %w", err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := c.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
		Parents:  []string{c.rootFolder},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create form folder: %w", err)
	}
	return folder.Id, nil
}

// Upload stores src under the given folder and returns the drive file id.
func (c *DriveClient) Upload(ctx context.Context, folderID, name string, src io.Reader) (string, error) {
	file, err := c.svc.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).Media(src, googleapi.ContentType(mimeTypeFor(name))).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return file.Id, nil
}

// ShareableLink makes the file readable by anyone with the link and returns
// its web view link.
func (c *DriveClient) ShareableLink(ctx context.Context, fileID string) (string, error) {
	_, err := c.svc.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("share %s: %w", fileID, err)
	}

	file, err := c.svc.Files.Get(fileID).Fields("webViewLink").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get link for %s: %w", fileID, err)
	}
	return file.WebViewLink, nil
}

var driveMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
}

func mimeTypeFor(name string) string {
	if mt, ok := driveMimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}
