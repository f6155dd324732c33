package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"courseadmin/pkg/course"
	"courseadmin/pkg/ident"
)

func coursePath(id ident.ID) string {
	return "/course/" + url.PathEscape(id.String())
}

func (c *Client) SearchCourses(ctx context.Context, page, pageSize int) (course.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var p course.Page
	if err := c.do(ctx, c.protected, http.MethodGet, "/course/search?"+q.Encode(), nil, &p); err != nil {
		return course.Page{}, fmt.Errorf("search courses: %w", err)
	}
	return p, nil
}

func (c *Client) CreateCourse(ctx context.Context, title string) error {
	body := map[string]string{"title": title}
	if err := c.do(ctx, c.protected, http.MethodPost, "/course", body, nil); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (c *Client) UpdateCourse(ctx context.Context, crs course.Course) error {
	if err := c.do(ctx, c.protected, http.MethodPut, coursePath(crs.ID), crs, nil); err != nil {
		return fmt.Errorf("update course %s: %w", crs.ID, err)
	}
	return nil
}

func (c *Client) DeleteCourse(ctx context.Context, id ident.ID) error {
	if err := c.do(ctx, c.protected, http.MethodDelete, coursePath(id), nil, nil); err != nil {
		return fmt.Errorf("delete course %s: %w", id, err)
	}
	return nil
}

func (c *Client) PublishCourse(ctx context.Context, id ident.ID) error {
	if err := c.do(ctx, c.protected, http.MethodPatch, coursePath(id)+"/publish", nil, nil); err != nil {
		return fmt.Errorf("publish course %s: %w", id, err)
	}
	return nil
}

func (c *Client) UnpublishCourse(ctx context.Context, id ident.ID) error {
	if err := c.do(ctx, c.protected, http.MethodPatch, coursePath(id)+"/unpublish", nil, nil); err != nil {
		return fmt.Errorf("unpublish course %s: %w", id, err)
	}
	return nil
}
